package handlers

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/boxhub-dev/boxhub/internal/store"
	"github.com/boxhub-dev/boxhub/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	pollClients   = make(map[uint]map[*websocket.Conn]bool)
	pollClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type pollTallyMessage struct {
	Type        string               `json:"type"`
	PollID      uint                 `json:"poll_id"`
	Options     []PollOptionResponse `json:"options"`
	TotalVoters int64                `json:"total_voters"`
}

// BroadcastPollTally pushes the current tally to every client watching the
// poll. Called after every vote, unvote or option change.
func BroadcastPollTally(pollID uint) {
	pollClientsMu.RLock()
	clients, exists := pollClients[pollID]
	if !exists || len(clients) == 0 {
		pollClientsMu.RUnlock()
		return
	}

	// Copy the client set to avoid holding the lock during sends
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	pollClientsMu.RUnlock()

	tally, err := store.TallyPoll(pollID)

	if err != nil {
		log.Printf("Failed to tally poll %d for broadcast: %v", pollID, err)
		return
	}

	options := make([]PollOptionResponse, 0, len(tally.Options))

	for _, optionTally := range tally.Options {
		options = append(options, PollOptionResponse{
			ID:        optionTally.Option.ID,
			PollID:    optionTally.Option.PollID,
			Date:      optionTally.Option.Date,
			Label:     optionTally.Option.Label,
			VoteCount: optionTally.VoteCount,
			Voters:    optionTally.Voters,
			CreatedAt: optionTally.Option.CreatedAt,
		})
	}

	message := pollTallyMessage{
		Type:        "tally",
		PollID:      pollID,
		Options:     options,
		TotalVoters: tally.TotalVoters,
	}

	var failed []*websocket.Conn

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			failed = append(failed, conn)
			continue
		}

		if err := conn.WriteJSON(message); err != nil {
			log.Printf("Failed to push tally for poll %d: %v", pollID, err)
			failed = append(failed, conn)
		}
	}

	if len(failed) > 0 {
		pollClientsMu.Lock()
		if clients, exists := pollClients[pollID]; exists {
			for _, conn := range failed {
				delete(clients, conn)
				conn.Close()
			}
			if len(clients) == 0 {
				delete(pollClients, pollID)
			}
		}
		pollClientsMu.Unlock()
	}
}

// PollWebSocket streams live tally updates for a single poll.
func PollWebSocket(c *gin.Context) {
	pollIDRaw := c.Param("poll_id")
	pollID64, err := strconv.ParseUint(pollIDRaw, 10, 64)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Poll ID"})
		return
	}

	pollID := uint(pollID64)

	if _, err := store.GetPoll(pollID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// Set up connection parameters
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	// Register the connection to the poll
	pollClientsMu.Lock()
	if pollClients[pollID] == nil {
		pollClients[pollID] = make(map[*websocket.Conn]bool)
	}
	pollClients[pollID][conn] = true
	pollClientsMu.Unlock()

	// Clean up when connection closes
	defer func() {
		pollClientsMu.Lock()

		if clients, exists := pollClients[pollID]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(pollClients, pollID)
			}
		}

		pollClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for poll %d", pollID)
	}()

	// Send the current tally right away so clients don't wait for the
	// first vote.
	BroadcastPollTally(pollID)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// A stopped ticker never closes its channel, so the ping goroutine needs
	// an explicit exit signal when the read loop ends.
	done := make(chan struct{})
	defer close(done)

	go func() {
		// Send pings periodically
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					log.Printf("Failed to set write deadline for poll %d: %v", pollID, err)
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		// Set read deadline for each message
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for poll %d: %v", pollID, err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for poll %d: %v", pollID, err)
			}
			break
		}
	}
}
