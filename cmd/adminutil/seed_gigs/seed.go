package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/gig"
	"github.com/sudo-init-do/talentbook/internal/gig/wizard"
)

// seedGig is one entry of a seed file. Template values fill everything the
// entry leaves out.
type seedGig struct {
	VendorID         string          `yaml:"vendor_id"`
	TemplateID       string          `yaml:"template_id"`
	CategoryID       string          `yaml:"category_id"`
	Title            string          `yaml:"title"`
	ShortDescription string          `yaml:"short_description"`
	Price            string          `yaml:"price"`
	Free             bool            `yaml:"free"`
	City             string          `yaml:"city"`
	Photos           []string        `yaml:"photos"`
	Mode             gig.PublishMode `yaml:"mode"`
}

type seedFile struct {
	Gigs []seedGig `yaml:"gigs"`
}

func loadSeeds(data []byte) ([]seedGig, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i := range f.Gigs {
		s := &f.Gigs[i]
		if s.VendorID == "" {
			return nil, fmt.Errorf("gig %d: vendor_id is required", i)
		}
		if s.Mode == "" {
			s.Mode = gig.ModeCatalog
		}
		if s.Mode != gig.ModeCatalog && s.Mode != gig.ModeUnlisted {
			return nil, fmt.Errorf("gig %d: unknown mode %q", i, s.Mode)
		}
		if s.Price != "" {
			if _, err := decimal.NewFromString(s.Price); err != nil {
				return nil, fmt.Errorf("gig %d: price %q: %w", i, s.Price, err)
			}
		}
	}
	return f.Gigs, nil
}

func (s seedGig) apply(d *gig.Draft) {
	if s.CategoryID != "" {
		d.CategoryID = s.CategoryID
	}
	if s.Title != "" {
		d.Title = s.Title
	}
	if s.ShortDescription != "" {
		d.ShortDescription = s.ShortDescription
	}
	if s.Price != "" {
		d.PriceAmount = decimal.NewNullDecimal(decimal.RequireFromString(s.Price))
	}
	if s.Free {
		d.IsFree = true
	}
	if s.City != "" {
		d.BaseCity = s.City
	}
	if len(s.Photos) > 0 {
		d.Photos = append([]string(nil), s.Photos...)
	}
}

// seed walks a builder session through every step and publishes the result.
func seed(ctx context.Context, gigs *gig.Service, s seedGig) (*gig.Gig, string, error) {
	actor := auth.Actor{Role: auth.RoleVendor, VendorID: s.VendorID}
	sess := wizard.New(wizard.NewServiceBackend(gigs, actor), s.TemplateID)
	sess.Edit(func(d *gig.Draft) { d.CategoryID = s.CategoryID })

	// the first advance creates the draft from the template
	if err := sess.Advance(ctx); err != nil {
		return nil, "", fmt.Errorf("create draft: %w", err)
	}
	sess.Edit(s.apply)
	for sess.Step() < gig.LastStep {
		if err := sess.Advance(ctx); err != nil {
			return sess.Gig(), "", fmt.Errorf("step %s: %w (fields: %v)", gig.StepAt(sess.Step()), err, sess.FieldErrors())
		}
	}
	link, err := sess.Publish(ctx, s.Mode)
	if err != nil {
		return sess.Gig(), "", fmt.Errorf("publish: %w (fields: %v)", err, sess.FieldErrors())
	}
	return sess.Gig(), link, nil
}
