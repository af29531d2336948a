package cloudinary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// DefaultBaseURL is the public Cloudinary API endpoint.
const DefaultBaseURL = "https://api.cloudinary.com"

// ErrNotConfigured is returned before any request when the cloud name or
// API key is missing.
var ErrNotConfigured = errors.New("cloudinary is not configured")

// Config holds Cloudinary connection details.
type Config struct {
	BaseURL   string
	CloudName string
	APIKey    string
	Timeout   time.Duration
}

// File is an image to upload.
type File struct {
	Name    string
	Content []byte
}

// Options are the optional upload parameters.
type Options struct {
	Folder    string
	PublicID  string
	Overwrite *bool
}

// UploadResult is the subset of the upload response the store uses.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// Client uploads images to Cloudinary with unsigned API-key uploads.
type Client struct {
	cfg Config
	now func() time.Time
}

// NewClient creates a new Cloudinary client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, now: time.Now}
}

// Configured reports whether uploads can be attempted.
func (c *Client) Configured() bool {
	return c.cfg.CloudName != "" && c.cfg.APIKey != ""
}

// Upload posts file as multipart form data and returns the hosted URL.
// The call is not cancellable once sent; a deadline on ctx only shortens
// the request timeout.
func (c *Client) Upload(ctx context.Context, file File, opts Options) (*UploadResult, error) {
	if c.cfg.CloudName == "" {
		return nil, fmt.Errorf("%w: cloud name is missing", ErrNotConfigured)
	}
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is missing", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("api_key", c.cfg.APIKey)
	args.Set("cloud_name", c.cfg.CloudName)
	args.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	if opts.Folder != "" {
		args.Set("folder", opts.Folder)
	}
	if opts.PublicID != "" {
		args.Set("public_id", opts.PublicID)
	}
	if opts.Overwrite != nil {
		args.Set("overwrite", strconv.FormatBool(*opts.Overwrite))
	}

	name := file.Name
	if name == "" {
		name = "upload"
	}

	url := fmt.Sprintf("%s/v1_1/%s/upload", c.cfg.BaseURL, c.cfg.CloudName)
	agent := fiber.Post(url).
		Timeout(timeout).
		FileData(&fiber.FormFile{Fieldname: "file", Name: name, Content: file.Content}).
		MultipartForm(args)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("cloudinary upload failed: %w", errors.Join(errs...))
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &failure)
		return nil, fmt.Errorf("cloudinary upload failed: %d %s - %s", code, utils.StatusMessage(code), failure.Error.Message)
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cloudinary response: %w", err)
	}
	if result.SecureURL == "" {
		return nil, fmt.Errorf("cloudinary response carries no secure_url")
	}
	return &result, nil
}
