package wizard

import (
	"context"

	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/gig"
)

// ServiceBackend runs a session directly against the gig service as actor.
type ServiceBackend struct {
	gigs  *gig.Service
	actor auth.Actor
}

func NewServiceBackend(gigs *gig.Service, actor auth.Actor) *ServiceBackend {
	return &ServiceBackend{gigs: gigs, actor: actor}
}

func (b *ServiceBackend) CreateDraft(ctx context.Context, templateID, categoryID string) (*gig.Gig, error) {
	return b.gigs.CreateDraft(ctx, b.actor, gig.CreateRequest{TemplateID: templateID, CategoryID: categoryID})
}

func (b *ServiceBackend) SaveStep(ctx context.Context, id string, d gig.Draft, step int) (*gig.Gig, error) {
	return b.gigs.SaveStep(ctx, b.actor, id, func(u *gig.Update) error {
		u.Draft = d
		u.CurrentStep = step
		return nil
	})
}

func (b *ServiceBackend) Load(ctx context.Context, id string) (*gig.Gig, error) {
	return b.gigs.Get(ctx, b.actor, id)
}

func (b *ServiceBackend) Publish(ctx context.Context, id string, mode gig.PublishMode) (*gig.Gig, string, error) {
	return b.gigs.Publish(ctx, b.actor, id, mode)
}
