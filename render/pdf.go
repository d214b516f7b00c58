package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// PDFPrinter turns a rendered HTML document into a PDF.
type PDFPrinter interface {
	PrintPDF(ctx context.Context, html []byte, landscape bool) ([]byte, error)
}

// ChromePrinter prints with a headless Chrome started for each document.
type ChromePrinter struct {
	Bin     string
	Timeout time.Duration
}

func NewChromePrinter(bin string, timeout time.Duration) *ChromePrinter {
	return &ChromePrinter{Bin: bin, Timeout: timeout}
}

func (c *ChromePrinter) PrintPDF(ctx context.Context, html []byte, landscape bool) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	l := launcher.New().Context(ctx).Headless(true).Leakless(false)
	if c.Bin != "" {
		l = l.Bin(c.Bin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			zap.S().Warnf("failed to close browser: %v", err)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("failed to load report document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for report document: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:         landscape,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF stream: %w", err)
	}
	return pdf, nil
}
