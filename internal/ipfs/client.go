// Package ipfs pins generated artwork and metadata to IPFS through a Pinata
// compatible pinning service.
package ipfs

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"

	"github.com/imajus/ember-nft/internal/adapter"
	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/uri"
)

// Config holds pinning service configuration
type Config struct {
	// BaseURL is the pinning API base, e.g. https://api.pinata.cloud
	BaseURL string
	// JWT is the bearer token for the pinning API
	JWT string
	// GatewayURL is the gateway base used to fetch pinned content
	GatewayURL string
}

// Client pins content and resolves pinned references
//
//go:generate mockgen -source=client.go -destination=../mocks/ipfs.go -package=mocks -mock_names=Client=MockContentStore
type Client interface {
	// UploadImage pins raw image bytes and returns the CID
	UploadImage(ctx context.Context, data []byte, name string) (string, error)

	// UploadMetadata pins a metadata document as JSON and returns the CID
	UploadMetadata(ctx context.Context, meta *domain.TokenMetadata) (string, error)

	// UploadImageAndMetadata pins the image, points the metadata's image
	// field at it, pins the metadata, and returns the metadata CID. Any
	// failure aborts the whole upload.
	UploadImageAndMetadata(ctx context.Context, image []byte, meta *domain.TokenMetadata, name string) (string, error)

	// Fetch downloads the content behind a reference through the gateway
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

type client struct {
	http adapter.HTTPClient
	json adapter.JSON
	cfg  Config
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

type pinJSONRequest struct {
	PinataContent  interface{}    `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

// NewClient creates a pinning service client
func NewClient(httpClient adapter.HTTPClient, jsonAdapter adapter.JSON, cfg Config) Client {
	return &client{http: httpClient, json: jsonAdapter, cfg: cfg}
}

// UploadImage pins raw image bytes and returns the CID
func (c *client) UploadImage(ctx context.Context, data []byte, name string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Give the pinned file an extension matching its actual content
	filename := name + mimetype.Detect(data).Extension()
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	body, err := c.http.Post(ctx,
		c.cfg.BaseURL+"/pinning/pinFileToIPFS",
		writer.FormDataContentType(),
		c.authHeaders(),
		&buf)
	if err != nil {
		return "", fmt.Errorf("failed to pin file: %w", err)
	}

	return c.parseCID(body)
}

// UploadMetadata pins a metadata document as JSON and returns the CID
func (c *client) UploadMetadata(ctx context.Context, meta *domain.TokenMetadata) (string, error) {
	payload, err := c.json.Marshal(pinJSONRequest{
		PinataContent:  meta,
		PinataMetadata: pinataMetadata{Name: meta.Name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	body, err := c.http.Post(ctx,
		c.cfg.BaseURL+"/pinning/pinJSONToIPFS",
		"application/json",
		c.authHeaders(),
		bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to pin metadata: %w", err)
	}

	return c.parseCID(body)
}

// UploadImageAndMetadata pins the image, points the metadata's image field at
// it, pins the metadata, and returns the metadata CID
func (c *client) UploadImageAndMetadata(ctx context.Context, image []byte, meta *domain.TokenMetadata, name string) (string, error) {
	imageCID, err := c.UploadImage(ctx, image, name)
	if err != nil {
		return "", err
	}

	meta.Image = uri.Scheme + imageCID

	metadataCID, err := c.UploadMetadata(ctx, meta)
	if err != nil {
		return "", err
	}

	return metadataCID, nil
}

// Fetch downloads the content behind a reference through the gateway
func (c *client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	url, err := uri.ToGatewayURL(c.cfg.GatewayURL, ref)
	if err != nil {
		return nil, err
	}

	data, err := c.http.GetBytes(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	return data, nil
}

func (c *client) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.cfg.JWT,
	}
}

func (c *client) parseCID(body []byte) (string, error) {
	var resp pinResponse
	if err := c.json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse pin response: %w", err)
	}
	if resp.IpfsHash == "" {
		return "", fmt.Errorf("pin response missing IpfsHash")
	}
	return resp.IpfsHash, nil
}
