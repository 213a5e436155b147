package httpinterface

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

const maxEventsLimit = 1000

// listEvents returns the ledger events matching the type, deposit_id and
// intent_id query params, after the given sequence.
func (h *handler) listEvents(c *gin.Context) {
	depositID, ok := uintQuery(c, "deposit_id")
	if !ok {
		return
	}
	after, ok := uintQuery(c, "after")
	if !ok {
		return
	}
	limit, ok := uintQuery(c, "limit")
	if !ok {
		return
	}
	if limit == 0 || limit > maxEventsLimit {
		limit = maxEventsLimit
	}

	filter := domain.EventFilter{
		Type:          domain.EventType(strings.ToUpper(c.Query("type"))),
		DepositID:     depositID,
		AfterSequence: after,
		Limit:         int(limit),
	}
	if intentID := c.Query("intent_id"); intentID != "" {
		filter.IntentID = domain.NormalizeHash(intentID)
	}

	events, err := h.EscrowSvc.ListEvents(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	list := make([]eventInfo, 0, len(events))
	for _, e := range events {
		list = append(list, newEventInfo(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

// streamEvents upgrades the connection to a websocket receiving the events
// of the types listed in the comma separated types query param, or all of
// them.
func (h *handler) streamEvents(c *gin.Context) {
	if h.EventStream == nil {
		abortWithError(c, errStreamDisabled)
		return
	}

	topics := make([]string, 0)
	for _, t := range strings.Split(c.Query("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, strings.ToUpper(t))
		}
	}

	wsClients.Inc()
	defer wsClients.Dec()

	if err := h.EventStream.Serve(c.Writer, c.Request, topics); err != nil {
		log.WithError(err).Debug("event stream connection closed")
	}
}
