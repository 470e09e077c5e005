package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/infra"

	"github.com/gorilla/websocket"
)

const (
	maxRetries   = 10
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

// ShopMirror is the dashboard persistence the gateway keeps in sync
// with the live registry. May be nil.
type ShopMirror interface {
	UpsertShop(shop *domain.ShopInfo) error
	DeleteShop(controllerID string) error
}

// ShopSink is where materialized shops land; satisfied by the service
// registry.
type ShopSink interface {
	Put(shop *domain.Shop)
	Remove(controllerID string)
}

var _ domain.WorldGateway = (*Worker)(nil)

// Worker mirrors live shop state from the world server over WebSocket
// and pushes set_price commands back when the sweeper corrects an offer.
type Worker struct {
	url      string
	token    string
	registry ShopSink
	mirror   ShopMirror

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWorker creates a gateway worker. An invalid URL is a fatal
// configuration error, not something to retry.
func NewWorker(url, token string, registry ShopSink, mirror ShopMirror) (*Worker, error) {
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		return nil, &domain.ConfigError{Field: "gateway.url", Err: fmt.Errorf("not a websocket URL: %s", url)}
	}
	return &Worker{
		url:      url,
		token:    token,
		registry: registry,
		mirror:   mirror,
	}, nil
}

// Connect starts the connection loop.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("World gateway connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			pingCtx, stopPing := context.WithCancel(ctx)
			go w.pingLoop(pingCtx)
			w.readLoop(ctx)
			stopPing()
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return domain.NewNetworkError("dial", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	slog.Info("World gateway connected", slog.String("url", w.url))
	return nil
}

func (w *Worker) subscribe() error {
	msg := subscribeMessage{Type: "subscribe_shops", Token: w.token}
	b, _ := json.Marshal(msg)
	if err := w.threadSafeWrite(websocket.TextMessage, b); err != nil {
		return domain.NewNetworkError("subscribe", err)
	}
	return nil
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

// pingLoop keeps the connection alive through idle periods. A failed
// ping surfaces in the read loop as a closed connection.
func (w *Worker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.threadSafeWrite(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *Worker) handleMessage(msg []byte) {
	var m inboundMessage
	if json.Unmarshal(msg, &m) != nil {
		return
	}

	switch m.Type {
	case "shop_snapshot":
		if m.Shop == nil || m.Shop.ControllerID == "" {
			return
		}
		shop := materializeShop(m.Shop)
		// Corrections on a mirrored shop are pushed back to the world.
		shop.AddListener(domain.OfferListenerFunc(w.onOfferCorrected))
		w.registry.Put(shop)
		w.mirrorUpsert(shop)

	case "shop_removed":
		if m.ControllerID == "" {
			return
		}
		w.registry.Remove(m.ControllerID)
		if w.mirror != nil {
			// A shop removed before its first snapshot was mirrored is fine.
			if err := w.mirror.DeleteShop(m.ControllerID); err != nil && !errors.Is(err, domain.ErrShopNotFound) {
				slog.Error("Failed to delete shop mirror", slog.Any("error", err))
			}
		}
	}
}

func (w *Worker) onOfferCorrected(shop *domain.Shop, c domain.Correction) {
	cmd := buildSetPrice(shop, c)
	b, _ := json.Marshal(cmd)
	if err := w.threadSafeWrite(websocket.TextMessage, b); err != nil {
		slog.Warn("Failed to push set_price command",
			slog.String("controller_id", shop.ControllerID),
			slog.String("offer_id", c.OfferID),
			slog.Any("error", err))
	}
}

func (w *Worker) mirrorUpsert(shop *domain.Shop) {
	if w.mirror == nil {
		return
	}

	sellOffers, buyOffers := 0, 0
	for _, cat := range shop.Sell {
		sellOffers += len(cat.Offers)
	}
	for _, cat := range shop.Buy {
		buyOffers += len(cat.Offers)
	}

	info := &domain.ShopInfo{
		ControllerID: shop.ControllerID,
		Name:         shop.Name,
		SellOffers:   sellOffers,
		BuyOffers:    buyOffers,
		UpdatedAt:    time.Now(),
	}
	if err := w.mirror.UpsertShop(info); err != nil {
		slog.Error("Failed to upsert shop mirror", slog.Any("error", err))
	}
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

// IsConnected reports whether a live connection is established.
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Disconnect stops the connection loop and closes the socket.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
