package docai

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resultSchema is the wire contract for a finished job's result payload.
// Responses that do not validate are treated as backend errors rather
// than being passed downstream.
const resultSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string"},
		"pages": {"type": "integer", "minimum": 0},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

// Config for the document structuring client.
type Config struct {
	BaseURL string        // required, e.g. https://docai.example.com
	APIKey  string        // if empty, falls back to env DOCAI_API_KEY
	Timeout time.Duration // per-request http timeout, not the job budget
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
	schema     *jsonschema.Schema
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("docai: base URL is required")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("DOCAI_API_KEY")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := jsonschema.CompileString("result.json", resultSchema)
	if err != nil {
		return nil, fmt.Errorf("docai: compile result schema: %w", err)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
		schema:     schema,
	}, nil
}
