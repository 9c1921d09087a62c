package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/booking"
	mware "github.com/sudo-init-do/talentbook/internal/middleware"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

func newFeedServer(t *testing.T, hub *Hub) (*httptest.Server, *auth.Tokens) {
	t.Helper()
	tokens := auth.NewTokens("test-secret", nil)
	e := echo.New()
	e.GET("/vendors/:id/bookings/ws", hub.VendorBookingsWS, mware.Authenticate(tokens, nil))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, tokens
}

func dial(t *testing.T, srv *httptest.Server, vendorID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/vendors/" + vendorID + "/bookings/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEvent(t *testing.T, c *websocket.Conn) wsEvent {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var evt wsEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return evt
}

func TestFeedDeliversBookingEvents(t *testing.T) {
	hub := NewHub()
	srv, tokens := newFeedServer(t, hub)
	tok, _ := tokens.Issue(auth.Actor{UserID: "u1", Role: auth.RoleVendor, VendorID: "v1"}, time.Hour)

	conn, _, err := dial(t, srv, "v1", tok)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if evt := readEvent(t, conn); evt.Type != EventPresenceJoin {
		t.Fatalf("first event = %s, want %s", evt.Type, EventPresenceJoin)
	}

	b := &booking.Booking{ID: "b1", VendorID: "v1", ClientName: "Dana Cohen", Status: booking.StatusPending}
	if err := hub.BookingCreated(context.Background(), b, &vendor.Vendor{ID: "v1"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if evt := readEvent(t, conn); evt.Type != EventBookingNew {
		t.Fatalf("event = %s, want %s", evt.Type, EventBookingNew)
	}

	// events for other vendors never reach this feed
	_ = hub.BookingCreated(context.Background(), &booking.Booking{ID: "b2", VendorID: "v2"}, &vendor.Vendor{ID: "v2"})

	b.Status = booking.StatusConfirmed
	hub.BookingStatusChanged(context.Background(), b)
	evt := readEvent(t, conn)
	if evt.Type != EventBookingStatus {
		t.Fatalf("event = %s, want %s", evt.Type, EventBookingStatus)
	}
	if data, _ := evt.Data.(map[string]interface{}); data["id"] != "b1" || data["status"] != "confirmed" {
		t.Fatalf("unexpected status payload: %v", evt.Data)
	}
}

func TestFeedRejectsOtherVendor(t *testing.T) {
	hub := NewHub()
	srv, tokens := newFeedServer(t, hub)
	tok, _ := tokens.Issue(auth.Actor{UserID: "u1", Role: auth.RoleVendor, VendorID: "v1"}, time.Hour)

	_, resp, err := dial(t, srv, "v2", tok)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
	if hub.Subscribers("v2") != 0 {
		t.Fatalf("rejected client registered")
	}
}

func TestBroadcastWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub()
	if err := hub.BookingCreated(context.Background(), &booking.Booking{ID: "b"}, &vendor.Vendor{ID: "nobody"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hub.Subscribers("nobody") != 0 {
		t.Fatalf("broadcast created a feed")
	}
}
