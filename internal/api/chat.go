package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	fhttp "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

// streamBufferSize is the read size for the chat body
const streamBufferSize = 4096

// StreamChat posts a chat request and calls onChunk with each decoded piece
// of the response body, in the order it arrives. It returns nil when the
// body ends cleanly. onChunk is called on the caller's goroutine.
func (c *Client) StreamChat(ctx context.Context, chatReq models.ChatRequest, onChunk func(chunk string)) error {
	if strings.TrimSpace(chatReq.UserMessage) == "" {
		return apierrors.NewEmptyInputError("user_message")
	}
	if chatReq.APIKey == "" {
		return apierrors.ErrNoCredential
	}
	if chatReq.Model == "" {
		chatReq.Model = models.DefaultModel.Name
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := c.newRequest(ctx, fhttp.MethodPost, models.PathChat, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/plain, */*")
	keyedInBody(req, chatReq.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewNetworkError("chat", models.PathChat, transportCause(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readLimited(resp.Body, maxErrorBody)
		return apierrors.NewAPIErrorWithBody(
			resp.StatusCode,
			models.PathChat,
			fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
			body,
		)
	}

	return readStream(ctx, resp.Body, onChunk)
}

// readStream drains body, emitting whole UTF-8 sequences only
func readStream(ctx context.Context, body io.Reader, onChunk func(chunk string)) error {
	var dec utf8Decoder
	buf := make([]byte, streamBufferSize)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if text := dec.decode(buf[:n]); text != "" && onChunk != nil {
				onChunk(text)
			}
		}
		if readErr == io.EOF {
			if text := dec.flush(); text != "" && onChunk != nil {
				onChunk(text)
			}
			return nil
		}
		if readErr != nil {
			return apierrors.NewNetworkError("chat stream", models.PathChat, transportCause(ctx, readErr))
		}
		if err := ctx.Err(); err != nil {
			return apierrors.NewNetworkError("chat stream", models.PathChat, err)
		}
	}
}

// utf8Decoder holds back a trailing partial rune until the next read completes it
type utf8Decoder struct {
	pending []byte
}

func (d *utf8Decoder) decode(p []byte) string {
	data := make([]byte, 0, len(d.pending)+len(p))
	data = append(data, d.pending...)
	data = append(data, p...)

	cut := len(data)
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				cut = i
			}
			break
		}
	}

	d.pending = append(d.pending[:0], data[cut:]...)
	return string(data[:cut])
}

// flush returns whatever is left, valid or not
func (d *utf8Decoder) flush() string {
	text := string(d.pending)
	d.pending = nil
	return text
}
