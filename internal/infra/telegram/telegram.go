package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrAvatarNotFound is returned when the user has no profile photo.
var ErrAvatarNotFound = errors.New("avatar not found")

type NotifierInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type AvatarFetcherInterface interface {
	FetchAvatar(ctx context.Context, userID int64) (io.ReadCloser, error)
}

// Client talks to the Telegram Bot API for operator notifications and user
// avatar retrieval.
type Client struct {
	botAPI      string
	fileAPI     string
	adminChatID int64
	httpClient  *http.Client
	logger      *slog.Logger
}

var (
	_ NotifierInterface      = (*Client)(nil)
	_ AvatarFetcherInterface = (*Client)(nil)
)

func NewClient(botToken string, adminChatID int64, timeout time.Duration, logger *slog.Logger) *Client {
	var botAPI, fileAPI string
	if botToken != "" {
		botAPI = "https://api.telegram.org/bot" + botToken
		fileAPI = "https://api.telegram.org/file/bot" + botToken
	}
	return &Client{
		botAPI:      botAPI,
		fileAPI:     fileAPI,
		adminChatID: adminChatID,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// AdminChatID exposes the configured operator chat.
func (c *Client) AdminChatID() int64 { return c.adminChatID }

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if c.adminChatID == 0 {
		c.logger.Warn("admin chat id is not set, message will not be sent")
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.botAPI+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send: status %d", resp.StatusCode)
	}
	c.logger.Info("message sent to telegram chat", "chat_id", chatID)
	return nil
}

type profilePhotosResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		TotalCount int `json:"total_count"`
		Photos     [][]struct {
			FileID string `json:"file_id"`
		} `json:"photos"`
	} `json:"result"`
}

type getFileResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// FetchAvatar resolves the user's newest profile photo and streams its bytes.
func (c *Client) FetchAvatar(ctx context.Context, userID int64) (io.ReadCloser, error) {
	fileID, err := c.profilePhotoFileID(ctx, userID)
	if err != nil {
		return nil, err
	}

	filePath, err := c.filePath(ctx, fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileAPI+"/"+filePath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram file download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("telegram file download: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) profilePhotoFileID(ctx context.Context, userID int64) (string, error) {
	values := url.Values{}
	values.Set("user_id", strconv.FormatInt(userID, 10))
	values.Set("limit", "1")

	var payload profilePhotosResponse
	if err := c.getJSON(ctx, c.botAPI+"/getUserProfilePhotos?"+values.Encode(), &payload); err != nil {
		return "", err
	}
	if !payload.OK || payload.Result.TotalCount == 0 || len(payload.Result.Photos) == 0 || len(payload.Result.Photos[0]) == 0 {
		c.logger.Info("avatar not found for user", "user_id", userID)
		return "", ErrAvatarNotFound
	}
	return payload.Result.Photos[0][0].FileID, nil
}

func (c *Client) filePath(ctx context.Context, fileID string) (string, error) {
	values := url.Values{}
	values.Set("file_id", fileID)

	var payload getFileResponse
	if err := c.getJSON(ctx, c.botAPI+"/getFile?"+values.Encode(), &payload); err != nil {
		return "", err
	}
	if !payload.OK || payload.Result.FilePath == "" {
		return "", fmt.Errorf("telegram getFile: no file path for %s", fileID)
	}
	return payload.Result.FilePath, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
