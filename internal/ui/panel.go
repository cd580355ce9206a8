package ui

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bgreenlee/weatherbar/internal/weather"
)

const (
	// AppTitle is shown in the status bar before the first snapshot arrives.
	AppTitle = "WeatherBar"

	panelWidth  = 320
	panelHeight = 96
	iconSize    = 64
	iconMargin  = 16
)

// PanelState is a copy of what the panel currently displays.
type PanelState struct {
	Title     string            `json:"title"`
	Snapshot  *weather.Snapshot `json:"snapshot,omitempty"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
	LastError string            `json:"lastError,omitempty"`
	FailedAt  *time.Time        `json:"failedAt,omitempty"`
}

// Panel renders weather snapshots. Its state is owned by the UI loop: every
// method must be called from a function running on the Loop.
type Panel struct {
	title   io.Writer
	iconDir string
	logger  *log.Logger
	font    *truetype.Font
	caser   cases.Caser
	now     func() time.Time

	snapshot  *weather.Snapshot
	updatedAt time.Time
	lastErr   error
	failedAt  time.Time
}

// NewPanel creates a Panel. The status bar title is written to title (nil
// discards it); icons are looked up as <iconDir>/<icon id>.png.
func NewPanel(title io.Writer, iconDir string, logger *log.Logger) (*Panel, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if title == nil {
		title = io.Discard
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Panel{
		title:   title,
		iconDir: iconDir,
		logger:  logger,
		font:    f,
		caser:   cases.Title(language.English),
		now:     time.Now,
	}, nil
}

// Update displays s and clears any failure marker.
func (p *Panel) Update(s weather.Snapshot) {
	p.snapshot = &s
	p.updatedAt = p.now().UTC()
	p.lastErr = nil
	p.failedAt = time.Time{}

	fmt.Fprintln(p.title, p.Title())
}

// UpdateFailed marks the last fetch as failed. The previous snapshot stays
// on screen.
func (p *Panel) UpdateFailed(err error) {
	p.lastErr = err
	p.failedAt = p.now().UTC()
}

// Title returns the status bar title, e.g. "Seattle: 55°F and Clouds".
func (p *Panel) Title() string {
	if p.snapshot == nil {
		return AppTitle
	}
	return fmt.Sprintf("%s: %s", p.snapshot.LocationName, p.conditionsLine())
}

func (p *Panel) conditionsLine() string {
	return fmt.Sprintf("%d°F and %s", int(p.snapshot.TemperatureF), p.caser.String(p.snapshot.Conditions))
}

// State returns a copy of the displayed state.
func (p *Panel) State() PanelState {
	st := PanelState{Title: p.Title()}
	if p.snapshot != nil {
		snap := *p.snapshot
		at := p.updatedAt
		st.Snapshot = &snap
		st.UpdatedAt = &at
	}
	if p.lastErr != nil {
		at := p.failedAt
		st.LastError = p.lastErr.Error()
		st.FailedAt = &at
	}
	return st
}

// RenderPNG paints the panel and writes it to w as a PNG image.
func (p *Panel) RenderPNG(w io.Writer) error {
	dc := gg.NewContext(panelWidth, panelHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetHexColor("#000000")

	textLeft := float64(iconMargin)

	if p.snapshot == nil {
		dc.SetFontFace(p.face(16))
		drawStringLeft(dc, AppTitle, textLeft, 12)
		drawStringLeft(dc, "Waiting for weather…", textLeft, 44)
	} else {
		if icon := p.loadIcon(p.snapshot.IconID); icon != nil {
			dc.DrawImage(icon, iconMargin, (panelHeight-iconSize)/2)
			textLeft += iconSize + iconMargin
		}

		dc.SetFontFace(p.face(18))
		drawStringLeft(dc, p.snapshot.LocationName, textLeft, 16)

		dc.SetFontFace(p.face(15))
		drawStringLeft(dc, p.conditionsLine(), textLeft, 48)
	}

	if p.lastErr != nil {
		dc.SetHexColor("#B00020")
		dc.SetFontFace(p.face(11))
		drawStringLeft(dc, "update failed", textLeft, panelHeight-18)
	}

	return dc.EncodePNG(w)
}

func (p *Panel) face(size float64) font.Face {
	return truetype.NewFace(p.font, &truetype.Options{Size: size})
}

// loadIcon returns the scaled icon for id, or nil when there is none.
func (p *Panel) loadIcon(id string) image.Image {
	if p.iconDir == "" || id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil
	}

	path := filepath.Join(p.iconDir, id+".png")
	icon, err := loadAndResizePng(path, iconSize, iconSize)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Printf("WARN: panel: failed to load icon (%q): %v", path, err)
		}
		return nil
	}
	return icon
}

func drawStringLeft(dc *gg.Context, text string, x, y float64) {
	_, h := dc.MeasureString(text)
	dc.DrawString(text, x, y+h)
}

func loadAndResizePng(imagePath string, width int, height int) (*image.RGBA, error) {
	imageFile, err := os.Open(imagePath)
	if err != nil {
		return nil, err
	}
	defer imageFile.Close()

	sourceImage, err := png.Decode(imageFile)
	if err != nil {
		return nil, err
	}

	destImage := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(destImage, destImage.Rect, sourceImage, sourceImage.Bounds(), draw.Over, nil)
	return destImage, nil
}
