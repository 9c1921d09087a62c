package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/talentbook/internal/booking"
	mware "github.com/sudo-init-do/talentbook/internal/middleware"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

// Event types pushed on a vendor feed.
const (
	EventBookingNew    = "booking_new"
	EventBookingStatus = "booking_status"
	EventPresenceJoin  = "presence_join"
)

type wsEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const writeWait = 10 * time.Second

type feed struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// Hub fans booking events out to the websocket connections of each vendor.
type Hub struct {
	mu       sync.Mutex
	feeds    map[string]*feed
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		feeds: make(map[string]*feed),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) feed(vendorID string) *feed {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.feeds[vendorID]
	if !ok {
		f = &feed{clients: make(map[*websocket.Conn]bool)}
		h.feeds[vendorID] = f
	}
	return f
}

func (h *Hub) register(vendorID string, c *websocket.Conn) {
	f := h.feed(vendorID)
	f.mu.Lock()
	f.clients[c] = true
	f.mu.Unlock()
}

func (h *Hub) unregister(vendorID string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.feeds[vendorID]
	if !ok {
		return
	}
	f.mu.Lock()
	delete(f.clients, c)
	empty := len(f.clients) == 0
	f.mu.Unlock()
	if empty {
		delete(h.feeds, vendorID)
	}
}

// Subscribers reports how many connections follow a vendor.
func (h *Hub) Subscribers(vendorID string) int {
	h.mu.Lock()
	f, ok := h.feeds[vendorID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (h *Hub) broadcast(vendorID string, evt wsEvent) {
	h.mu.Lock()
	f, ok := h.feeds[vendorID]
	h.mu.Unlock()
	if !ok {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			slog.Debug("dropping websocket client", slog.String("vendor_id", vendorID), slog.Any("err", err))
			delete(f.clients, c)
			_ = c.Close()
		}
	}
}

// BookingCreated implements booking.Notifier.
func (h *Hub) BookingCreated(_ context.Context, b *booking.Booking, v *vendor.Vendor) error {
	h.broadcast(v.ID, wsEvent{Type: EventBookingNew, Data: b})
	return nil
}

// BookingStatusChanged implements booking.StatusNotifier.
func (h *Hub) BookingStatusChanged(_ context.Context, b *booking.Booking) {
	h.broadcast(b.VendorID, wsEvent{Type: EventBookingStatus, Data: echo.Map{"id": b.ID, "status": b.Status}})
}

// VendorBookingsWS streams booking events for the vendor in :id.
// GET /vendors/:id/bookings/ws
func (h *Hub) VendorBookingsWS(c echo.Context) error {
	vendorID := c.Param("id")
	actor := mware.CurrentActor(c)
	if !actor.CanActForVendor(vendorID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to follow this vendor", "code": "FORBIDDEN"})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.register(vendorID, ws)
	h.broadcast(vendorID, wsEvent{Type: EventPresenceJoin, Data: echo.Map{"actor_id": actor.ID()}})

	// server push only; the read loop just notices disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.unregister(vendorID, ws)
			_ = ws.Close()
			return nil
		}
	}
}
