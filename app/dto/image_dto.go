package dto

// RenderImageRequest represents the query of the image endpoints.
// Exactly one of Data or Slug selects the encoded content; Data wins when both are set.
type RenderImageRequest struct {
	Data              string `query:"data" validate:"omitempty,max=2048"`
	Slug              string `query:"slug" validate:"omitempty,max=64"`
	Scale             *int   `query:"scale" validate:"omitempty,gte=1,lte=20"`
	Border            *int   `query:"border" validate:"omitempty,gte=0,lte=10"`
	Dark              string `query:"dark" validate:"omitempty,max=32"`
	Light             string `query:"light" validate:"omitempty,max=32"`
	GradientStart     string `query:"gradient_start" validate:"omitempty,max=32"`
	GradientEnd       string `query:"gradient_end" validate:"omitempty,max=32"`
	GradientDirection string `query:"gradient_direction" validate:"omitempty,oneof=horizontal vertical diagonal"`
}

// RenderedImage is an encoded image and its media type
type RenderedImage struct {
	ContentType string
	Body        []byte
}
