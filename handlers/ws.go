package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/nicawallet/wallet-api/services"
	"github.com/nicawallet/wallet-api/utils"
)

const (
	wsUserIDKey       = "user_id"
	wsSubscriptionKey = "subscription"
)

// WSHandler streams ledger snapshots over WebSocket. Each connection gets its
// own subscription from the ledger service: the current snapshot on connect,
// then the full replacement list after every mutation. When the subscription
// is cancelled server-side (logout, account deletion) the socket closes.
type WSHandler struct {
	M      *melody.Melody
	Ledger *services.LedgerService
}

func NewWSHandler(ledger *services.LedgerService) *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive tuning for cloud hosting that drops idle connections.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	h := &WSHandler{M: m, Ledger: ledger}

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(wsUserIDKey)
		uid, ok := userID.(string)
		if !ok || uid == "" {
			s.Close()
			return
		}

		sub := ledger.Subscribe(context.Background(), uid)
		s.Set(wsSubscriptionKey, sub)
		go pump(s, sub)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		if v, ok := s.Get(wsSubscriptionKey); ok {
			if sub, ok := v.(*services.Subscription); ok {
				sub.Cancel()
			}
		}
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return h
}

// pump forwards snapshots until the subscription ends, then closes the
// socket. A dead socket cancels the subscription instead.
func pump(s *melody.Session, sub *services.Subscription) {
	for snapshot := range sub.C {
		data, err := json.Marshal(snapshot)
		if err != nil {
			log.Printf("❌ Failed to encode snapshot: %v", err)
			continue
		}
		if err := s.Write(data); err != nil {
			sub.Cancel()
			return
		}
	}
	s.Close()
}

// HandleWS upgrades the request. Browsers cannot set an Authorization header
// on a WebSocket handshake, so the access token travels as a query parameter.
func (h *WSHandler) HandleWS(c *gin.Context) {
	claims, err := utils.ValidateAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	err = h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		wsUserIDKey: claims.UserID,
	})
	if err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}
