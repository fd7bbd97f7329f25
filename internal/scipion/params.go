// Package scipion generates Scipion workflow configuration files from a
// short interactive questionnaire, inserting acquisition parameters into the
// embedded protocol template.
package scipion

import (
	"errors"
	"fmt"
	"os"
)

// Params holds the acquisition values collected from the operator.
type Params struct {
	ProjectName    string
	GainRefPath    string
	FramesToStack  int
	PhysicalPixel  float64 // Physical pixel size, micrometers.
	ImagePixel     float64 // Image pixel size, Angstroms.
	SuperRes       bool
	CTFLowRes      float64 // CTF search low resolution bound, Angstroms.
	CTFHighRes     float64 // CTF search high resolution bound, Angstroms.
	DefocusMin     float64 // Micrometers.
	DefocusMax     float64 // Micrometers.
}

// Validate checks every parameter against the acquisition constraints the
// instrument can actually produce. The ranges match the legacy workflow's
// questionnaire bounds.
func (p *Params) Validate() error {
	if p.ProjectName == "" {
		return errors.New("project name must not be empty")
	}
	if p.GainRefPath == "" {
		return errors.New("gain reference path must not be empty")
	}
	if _, err := os.Stat(p.GainRefPath); err != nil {
		return fmt.Errorf("gain reference not found: %s", p.GainRefPath)
	}
	if p.FramesToStack < 1 || p.FramesToStack > 99 {
		return fmt.Errorf("frames to stack must be between 1 and 99 (got %d)", p.FramesToStack)
	}
	if p.PhysicalPixel <= 1 || p.PhysicalPixel >= 50 {
		return fmt.Errorf("physical pixel size must be between 1 and 50 um (got %g)", p.PhysicalPixel)
	}
	if p.ImagePixel <= 0.1 || p.ImagePixel >= 5 {
		return fmt.Errorf("image pixel size must be between 0.1 and 5 A (got %g)", p.ImagePixel)
	}
	if p.CTFLowRes <= 1 || p.CTFLowRes >= 50 {
		return fmt.Errorf("CTF low resolution bound must be between 1 and 50 A (got %g)", p.CTFLowRes)
	}
	if p.CTFHighRes <= 1 || p.CTFHighRes >= 50 {
		return fmt.Errorf("CTF high resolution bound must be between 1 and 50 A (got %g)", p.CTFHighRes)
	}
	if p.CTFLowRes <= p.CTFHighRes {
		return errors.New("CTF low resolution bound must be larger than the high bound")
	}
	if p.DefocusMin <= 0 || p.DefocusMin >= 10 {
		return fmt.Errorf("defocus search minimum must be between 0 and 10 um (got %g)", p.DefocusMin)
	}
	if p.DefocusMax <= 0 || p.DefocusMax >= 100 {
		return fmt.Errorf("defocus search maximum must be between 0 and 100 um (got %g)", p.DefocusMax)
	}
	return nil
}

// Magnification derives the nominal magnification from the physical and
// image pixel sizes; super-resolution acquisition halves it.
func (p *Params) Magnification() float64 {
	mag := (p.PhysicalPixel * 1e-6) / (p.ImagePixel * 1e-10)
	if p.SuperRes {
		mag /= 2
	}
	return mag
}
