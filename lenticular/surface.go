// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenticular

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
)

// Surface errors.
var (
	// ErrNoTextureCreator is returned when the draw context has no renderer
	// able to create textures.
	ErrNoTextureCreator = errors.New("lenticular: draw context has no texture creator")

	// ErrInvalidDimensions is returned for a non-positive surface size.
	ErrInvalidDimensions = errors.New("lenticular: invalid surface dimensions")
)

type textureDestroyer interface {
	Destroy()
}

// SurfacePresenter presents into a CPU framebuffer and hands the result to
// a gogpu window as a texture.
//
// The texture is created on first use and updated in place afterwards; a
// size change replaces it. Not safe for concurrent use.
type SurfacePresenter struct {
	presenter *Presenter
	fb        *image.RGBA
	tex       gpucontext.Texture
}

// NewSurfacePresenter returns a presenter drawing into a width x height
// framebuffer.
func NewSurfacePresenter(p *Presenter, width, height int) (*SurfacePresenter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if p == nil {
		p = NewPresenter()
	}
	return &SurfacePresenter{
		presenter: p,
		fb:        image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Framebuffer returns the CPU image the last frame was presented into.
func (s *SurfacePresenter) Framebuffer() *image.RGBA {
	return s.fb
}

// Resize changes the framebuffer size. The texture is replaced on the next
// draw.
func (s *SurfacePresenter) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if s.fb.Bounds().Dx() == width && s.fb.Bounds().Dy() == height {
		return nil
	}
	s.fb = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// PresentTo interleaves quilt into the framebuffer and draws it at the
// origin of dc.
func (s *SurfacePresenter) PresentTo(dc gpucontext.TextureDrawer, quilt image.Image, params Params) error {
	creator := dc.TextureCreator()
	if creator == nil {
		return ErrNoTextureCreator
	}
	if err := s.presenter.Present(s.fb, quilt, params); err != nil {
		return err
	}
	tex, err := s.upload(creator)
	if err != nil {
		return err
	}
	return dc.DrawTexture(tex, 0, 0)
}

func (s *SurfacePresenter) upload(creator gpucontext.TextureCreator) (gpucontext.Texture, error) {
	w, h := s.fb.Bounds().Dx(), s.fb.Bounds().Dy()
	if s.tex != nil && s.tex.Width() == w && s.tex.Height() == h {
		if u, ok := s.tex.(gpucontext.TextureUpdater); ok {
			if err := u.UpdateData(s.fb.Pix); err != nil {
				return nil, fmt.Errorf("lenticular: texture update: %w", err)
			}
			return s.tex, nil
		}
	}

	tex, err := creator.NewTextureFromRGBA(w, h, s.fb.Pix)
	if err != nil {
		return nil, fmt.Errorf("lenticular: create texture: %w", err)
	}
	// The interleaved output is opaque, so straight and premultiplied agree.
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	s.Release()
	s.tex = tex
	return tex, nil
}

// Release destroys the surface texture, if any.
func (s *SurfacePresenter) Release() {
	if d, ok := s.tex.(textureDestroyer); ok {
		d.Destroy()
	}
	s.tex = nil
}
