package diagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"

	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
)

// Client wraps the external multi-stage diagram pipeline
// (retriever, planner, stylist, visualizer, critic). The pipeline is a black
// box behind one HTTP endpoint; a call takes seconds to minutes.
type Client struct {
	BaseURL   string
	FigureDir string
	Timeout   time.Duration

	HTTPClient *http.Client
}

var validate = validator.New()

// NewClientFromConfig builds a pipeline client from the validated app config.
func NewClientFromConfig(cfg *config.AppConfig) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(cfg.PipelineURL, "/"),
		FigureDir:  cfg.FigureDir,
		Timeout:    cfg.PipelineTimeout,
		HTTPClient: &http.Client{
			// No client-level timeout; the per-call context carries the deadline.
		},
	}
}

type generatePayload struct {
	SourceContext       string `json:"source_context"`
	CommunicativeIntent string `json:"communicative_intent"`
	DiagramType         string `json:"diagram_type"`
}

// Generate runs one pipeline call and returns the path of the stored PNG.
// The figureUUID names the output file; the caller mints it up front so
// status polling can start before the call finishes.
//
// A temp input artifact carries the method text into the call, matching the
// pipeline's file-based input contract. It is removed on every exit path.
func (c *Client) Generate(ctx context.Context, figureUUID string, req GenerationRequest) (string, error) {
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return "", ErrInvalidInput
	}
	if _, err := ParseDiagramType(string(req.DiagramType)); err != nil {
		return "", ErrInvalidInput
	}

	inputFile, err := os.CreateTemp("", "paperfig-input-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create input artifact: %w", err)
	}
	inputPath := inputFile.Name()
	defer func() {
		if rmErr := os.Remove(inputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warnf("[Diagram] Failed to remove input artifact %s: %v", inputPath, rmErr)
		}
	}()

	if _, err := inputFile.WriteString(req.SourceText); err != nil {
		inputFile.Close()
		return "", fmt.Errorf("failed to write input artifact: %w", err)
	}
	if err := inputFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close input artifact: %w", err)
	}

	sourceContext, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read input artifact: %w", err)
	}

	intent := req.Caption
	if req.Title != "" {
		intent = req.Title + ": " + req.Caption
	}

	body, err := json.Marshal(generatePayload{
		SourceContext:       string(sourceContext),
		CommunicativeIntent: intent,
		DiagramType:         string(req.DiagramType),
	})
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.BaseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrPipeline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status=%d body=%s", ErrPipeline, resp.StatusCode, string(snippet))
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: reading image: %v", ErrPipeline, err)
	}
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image response", ErrPipeline)
	}

	if err := os.MkdirAll(c.FigureDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create figure directory: %w", err)
	}

	imagePath := filepath.Join(c.FigureDir, figureUUID+".png")
	if err := os.WriteFile(imagePath, image, 0o644); err != nil {
		return "", fmt.Errorf("failed to store figure: %w", err)
	}

	return imagePath, nil
}
