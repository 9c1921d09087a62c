package auth

import "context"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleUser   Role = "user"
)

// Actor is the authenticated caller of a mutating request.
type Actor struct {
	UserID   string
	Email    string
	Role     Role
	VendorID string
	// ViaEditToken is set when the caller proved vendor ownership with an
	// edit token instead of a bearer session.
	ViaEditToken bool
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// ID returns a stable identifier for logs.
func (a Actor) ID() string {
	if a.UserID != "" {
		return a.UserID
	}
	if a.VendorID != "" {
		return "vendor:" + a.VendorID
	}
	return "anonymous"
}

// CanActForVendor reports whether the actor may mutate data owned by vendorID.
func (a Actor) CanActForVendor(vendorID string) bool {
	if a.IsAdmin() {
		return true
	}
	return vendorID != "" && a.VendorID == vendorID
}

// CanActForOwner reports whether the actor is the guest owner userID.
func (a Actor) CanActForOwner(userID string) bool {
	if a.IsAdmin() {
		return true
	}
	return userID != "" && a.UserID == userID
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor stored by the auth middleware.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
