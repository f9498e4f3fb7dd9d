package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

// ListDocuments returns the names the gateway has indexed
func (c *Client) ListDocuments(ctx context.Context) (*models.RemoteDocuments, error) {
	req, err := c.newRequest(ctx, fhttp.MethodGet, models.PathDocuments, nil, "")
	if err != nil {
		return nil, err
	}

	body, err := c.doJSON(ctx, req, "list documents", models.PathDocuments, "Failed to list documents")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrInvalidResponse, truncate(string(body), 200))
	}

	docs := &models.RemoteDocuments{}
	for _, name := range gjson.GetBytes(body, "documents").Array() {
		docs.Documents = append(docs.Documents, name.String())
	}
	docs.Total = len(docs.Documents)
	if total := gjson.GetBytes(body, "total"); total.Exists() {
		docs.Total = int(total.Int())
	}
	return docs, nil
}

// ClearDocuments drops every indexed document on the gateway and returns its message
func (c *Client) ClearDocuments(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, fhttp.MethodDelete, models.PathDocuments, nil, "")
	if err != nil {
		return "", err
	}

	body, err := c.doJSON(ctx, req, "clear documents", models.PathDocuments, "Failed to clear documents")
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "message").String(), nil
}

// RAGQuery asks a question against the indexed documents
func (c *Client) RAGQuery(ctx context.Context, query models.RAGQuery) (*models.RAGAnswer, error) {
	if strings.TrimSpace(query.Query) == "" {
		return nil, apierrors.NewEmptyInputError("query")
	}
	if query.APIKey == "" {
		return nil, apierrors.ErrNoCredential
	}
	if query.K <= 0 {
		query.K = models.DefaultRAGK
	}
	if query.ResponseStyle == "" {
		query.ResponseStyle = models.DefaultRAGResponseStyle
	}

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := c.newRequest(ctx, fhttp.MethodPost, models.PathRAGQuery, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	keyedInBody(req, query.APIKey)

	body, err := c.doJSON(ctx, req, "rag query", models.PathRAGQuery, "RAG query failed")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrInvalidResponse, truncate(string(body), 200))
	}

	parsed := gjson.ParseBytes(body)
	answer := &models.RAGAnswer{
		Answer:       parsed.Get("response").String(),
		ContextCount: int(parsed.Get("context_count").Int()),
	}
	for _, score := range parsed.Get("similarity_scores").Array() {
		answer.SimilarityScores = append(answer.SimilarityScores, score.String())
	}
	for _, ctxItem := range parsed.Get("contexts").Array() {
		answer.Contexts = append(answer.Contexts, models.RAGContext{
			Content: ctxItem.Get("content").String(),
			Score:   ctxItem.Get("score").Float(),
		})
	}
	return answer, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
