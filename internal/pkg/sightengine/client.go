package sightengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/verifake/verifake_server/config"
)

// ModelForService 检测服务到厂商模型名的映射。
// 未识别的服务一律回退到 deepfake 模型，请求不会被拒绝。
func ModelForService(service string) string {
	switch service {
	case "face":
		return "face-attributes"
	case "wad":
		return "wad"
	case "offensive":
		return "offensive"
	default:
		return "deepfake"
	}
}

type Client struct {
	endpoint   string
	apiUser    string
	apiSecret  string
	httpClient *http.Client
}

func NewClient(cfg *config.SightengineConfig) *Client {
	return &Client{
		endpoint:  cfg.Endpoint,
		apiUser:   cfg.APIUser,
		apiSecret: cfg.APISecret,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Check 将图片提交给检测 API，成功时返回厂商的原始 JSON 结果。
// 失败（非 2xx、网络错误、超时）不重试，由调用方整体失败。
func (c *Client) Check(ctx context.Context, image []byte, filename, model string) (map[string]interface{}, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("media", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}

	if err := writer.WriteField("models", model); err != nil {
		return nil, err
	}
	if err := writer.WriteField("api_user", c.apiUser); err != nil {
		return nil, err
	}
	if err := writer.WriteField("api_secret", c.apiSecret); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sightengine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sightengine returned %d: %s", resp.StatusCode, string(data))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sightengine response: %w", err)
	}

	return result, nil
}
