package businessflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/amirphl/Kyu-Ar/app/dto"
	"github.com/amirphl/Kyu-Ar/app/services"
	"github.com/amirphl/Kyu-Ar/repository"
	"github.com/amirphl/Kyu-Ar/utils"
)

// RenderFlow renders raw data or a registered code as a QR image
type RenderFlow interface {
	PNG(ctx context.Context, req dto.RenderImageRequest) (*dto.RenderedImage, error)
	SVG(ctx context.Context, req dto.RenderImageRequest) (*dto.RenderedImage, error)
}

type RenderFlowImpl struct {
	codeRepo repository.CodeRepository
	renderer services.QRRenderer
}

func NewRenderFlow(codeRepo repository.CodeRepository, renderer services.QRRenderer) RenderFlow {
	return &RenderFlowImpl{codeRepo: codeRepo, renderer: renderer}
}

func (f *RenderFlowImpl) PNG(ctx context.Context, req dto.RenderImageRequest) (*dto.RenderedImage, error) {
	content, opts, err := f.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := f.renderer.PNG(content, opts)
	if err != nil {
		return nil, renderError(err)
	}
	return &dto.RenderedImage{ContentType: "image/png", Body: body}, nil
}

func (f *RenderFlowImpl) SVG(ctx context.Context, req dto.RenderImageRequest) (*dto.RenderedImage, error) {
	content, opts, err := f.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := f.renderer.SVG(content, opts)
	if err != nil {
		return nil, renderError(err)
	}
	return &dto.RenderedImage{ContentType: "image/svg+xml", Body: body}, nil
}

func (f *RenderFlowImpl) prepare(ctx context.Context, req dto.RenderImageRequest) (string, services.RenderOptions, error) {
	opts, err := renderOptions(req)
	if err != nil {
		return "", opts, err
	}
	content, err := f.resolveContent(ctx, req)
	if err != nil {
		return "", opts, err
	}
	return content, opts, nil
}

// resolveContent prefers raw data over a slug reference. Raw data may arrive
// percent-encoded once more than the query string itself; '+' is kept literal.
func (f *RenderFlowImpl) resolveContent(ctx context.Context, req dto.RenderImageRequest) (string, error) {
	if strings.TrimSpace(req.Data) != "" {
		if len(req.Data) > utils.MaxImagePayloadSize {
			return "", invalidOption(fmt.Sprintf("data must be at most %d bytes", utils.MaxImagePayloadSize))
		}
		if decoded, err := url.PathUnescape(req.Data); err == nil {
			return decoded, nil
		}
		return req.Data, nil
	}
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		code, err := findCode(ctx, f.codeRepo, slug)
		if err != nil {
			return "", err
		}
		return code.TargetURL, nil
	}
	return "", NewBusinessError("MISSING_DATA", "Missing 'data' or 'slug' to encode", ErrMissingData)
}

func renderOptions(req dto.RenderImageRequest) (services.RenderOptions, error) {
	opts := services.DefaultRenderOptions()
	if req.Scale != nil {
		if *req.Scale < 1 || *req.Scale > 20 {
			return opts, invalidOption("scale must be between 1 and 20")
		}
		opts.Scale = *req.Scale
	}
	if req.Border != nil {
		if *req.Border < 0 || *req.Border > 10 {
			return opts, invalidOption("border must be between 0 and 10")
		}
		opts.Border = *req.Border
	}

	var err error
	if req.Dark != "" {
		if opts.Dark, err = services.ParseColor(req.Dark); err != nil {
			return opts, invalidOption("dark: " + err.Error())
		}
	}
	if req.Light != "" {
		if opts.Light, err = services.ParseColor(req.Light); err != nil {
			return opts, invalidOption("light: " + err.Error())
		}
	}

	if req.GradientStart == "" && req.GradientEnd == "" {
		return opts, nil
	}
	if req.GradientStart == "" || req.GradientEnd == "" {
		return opts, invalidOption("gradient_start and gradient_end must be set together")
	}
	g := &services.Gradient{Direction: services.GradientHorizontal}
	if g.Start, err = services.ParseColor(req.GradientStart); err != nil {
		return opts, invalidOption("gradient_start: " + err.Error())
	}
	if g.End, err = services.ParseColor(req.GradientEnd); err != nil {
		return opts, invalidOption("gradient_end: " + err.Error())
	}
	switch req.GradientDirection {
	case "":
	case services.GradientHorizontal, services.GradientVertical, services.GradientDiagonal:
		g.Direction = req.GradientDirection
	default:
		return opts, invalidOption("gradient_direction must be one of: horizontal vertical diagonal")
	}
	opts.Gradient = g
	return opts, nil
}

func invalidOption(msg string) error {
	return NewBusinessError("INVALID_IMAGE_OPTIONS", msg, fmt.Errorf("%w: %s", ErrInvalidInput, msg))
}

func renderError(err error) error {
	if errors.Is(err, services.ErrContentTooLarge) || errors.Is(err, services.ErrEmptyContent) {
		return NewBusinessError("INVALID_CONTENT", "Content cannot be encoded", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	return NewBusinessError("RENDER_FAILED", "Failed to render image", err)
}
