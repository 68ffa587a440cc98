// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pagetext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"roster-stamp/internal/resilience"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// Crop is a fixed OCR region in pixels at the render DPI
type Crop struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Empty reports whether no region is set
func (c Crop) Empty() bool {
	return c.W <= 0 || c.H <= 0
}

// OCRConfig configures page rasterization and recognition
type OCRConfig struct {
	Pdftoppm    string        // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract   string        // binary name or absolute path; if empty -> "tesseract"
	Language    string        // default "deu"
	DPI         int           // default 300
	PSM         int           // page segmentation mode; 0 leaves tesseract's default
	TessdataDir string        // optional --tessdata-dir
	Crop        Crop          // optional region of interest
	PageTimeout time.Duration // per page, covering all attempts; default 60s
	TempDir     string        // parent for render output; default os.TempDir()
}

// DefaultOCRConfig returns the German-language OCR defaults
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{
		Pdftoppm:    "pdftoppm",
		Tesseract:   "tesseract",
		Language:    "deu",
		DPI:         300,
		PageTimeout: 60 * time.Second,
	}
}

func (c OCRConfig) withDefaults() OCRConfig {
	d := DefaultOCRConfig()
	if c.Pdftoppm == "" {
		c.Pdftoppm = d.Pdftoppm
	}
	if c.Tesseract == "" {
		c.Tesseract = d.Tesseract
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.DPI <= 0 {
		c.DPI = d.DPI
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = d.PageTimeout
	}
	return c
}

// OCR renders single pages with pdftoppm and reads them with tesseract
type OCR struct {
	cfg    OCRConfig
	runner Runner
	retry  resilience.RetryConfig
}

// NewOCR creates an OCR engine. A nil runner executes the real binaries.
func NewOCR(cfg OCRConfig, runner Runner, retry resilience.RetryConfig) *OCR {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &OCR{cfg: cfg.withDefaults(), runner: runner, retry: retry}
}

// Page recognizes the 0-based page of the PDF at path
func (o *OCR) Page(ctx context.Context, path string, index int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.PageTimeout)
	defer cancel()

	return resilience.RetryWithResult(ctx, o.retry, func(ctx context.Context) (string, error) {
		return o.attempt(ctx, path, index)
	})
}

func (o *OCR) attempt(ctx context.Context, path string, index int) (string, error) {
	tmpDir, err := os.MkdirTemp(o.cfg.TempDir, "roster-stamp-ocr-*")
	if err != nil {
		return "", resilience.NewTransientError("failed to create render directory", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	if _, errb, err := o.runner.Run(ctx, o.cfg.Pdftoppm, o.renderArgs(path, index, prefix)...); err != nil {
		return "", commandError("pdftoppm", index, err, errb)
	}

	// -singlefile writes <prefix>.png without a page suffix
	out, errb, err := o.runner.Run(ctx, o.cfg.Tesseract, o.recognizeArgs(prefix+".png")...)
	if err != nil {
		return "", commandError("tesseract", index, err, errb)
	}
	return string(out), nil
}

func (o *OCR) renderArgs(path string, index int, prefix string) []string {
	page := strconv.Itoa(index + 1)
	args := []string{"-f", page, "-l", page, "-r", strconv.Itoa(o.cfg.DPI), "-png", "-singlefile"}
	if c := o.cfg.Crop; !c.Empty() {
		args = append(args,
			"-x", strconv.Itoa(c.X),
			"-y", strconv.Itoa(c.Y),
			"-W", strconv.Itoa(c.W),
			"-H", strconv.Itoa(c.H),
		)
	}
	return append(args, path, prefix)
}

func (o *OCR) recognizeArgs(image string) []string {
	args := []string{image, "stdout", "-l", o.cfg.Language}
	if o.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(o.cfg.PSM))
	}
	if o.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", o.cfg.TessdataDir)
	}
	return args
}

// commandError folds stderr into the message so classification can see it
func commandError(tool string, index int, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if len(msg) > 512 {
		msg = msg[:512] + "...(truncated)"
	}
	if msg == "" {
		return fmt.Errorf("%s page %d: %w", tool, index+1, err)
	}
	return fmt.Errorf("%s page %d: %w: %s", tool, index+1, err, msg)
}
