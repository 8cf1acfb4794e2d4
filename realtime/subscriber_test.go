package realtime

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dinesync/tablemap/controllers"
	"github.com/dinesync/tablemap/hub"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
}

// wsFixture is a live hub behind a real websocket endpoint.
type wsFixture struct {
	hub *hub.Hub
	srv *httptest.Server
	url string
}

func newWSFixture() *wsFixture {
	h := hub.New()
	r := gin.New()
	r.GET("/ws", controllers.WSHandler(h))
	srv := httptest.NewServer(r)
	return &wsFixture{
		hub: h,
		srv: srv,
		url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
	}
}

// collector records dispatched entities.
type collector struct {
	mu     sync.Mutex
	deltas []models.TableDelta
	notifs []models.Notification
}

func (c *collector) onDelta(d models.TableDelta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltas = append(c.deltas, d)
}

func (c *collector) onNotification(n models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifs = append(c.notifs, n)
}

func (c *collector) deltaCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deltas)
}

func (c *collector) notifCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notifs)
}

func TestSubscribeReceivesTableAndNotificationMessages(t *testing.T) {
	f := newWSFixture()
	defer f.srv.Close()

	var got collector
	sub := NewSubscriber(f.url)
	sub.delay = 50 * time.Millisecond
	cancel := sub.Subscribe(7, got.onDelta, got.onNotification)
	defer cancel()

	table := models.Table{ID: 3, TableNumber: "T3", Capacity: 4, Status: models.TableOccupied, CompanyID: 7}
	// The subscribe frames race the first publish; keep publishing until
	// one lands.
	assert.Eventually(t, func() bool {
		f.hub.Publish(hub.TableTopic(7), table)
		return got.deltaCount() > 0
	}, 3*time.Second, 20*time.Millisecond)

	got.mu.Lock()
	d := got.deltas[0]
	got.mu.Unlock()
	assert.Equal(t, uint(3), d.ID)
	assert.Equal(t, models.TableOccupied, *d.Status)

	assert.Eventually(t, func() bool {
		f.hub.Publish(hub.NotificationTopic(7), models.Notification{
			ID:   "late-42",
			Type: models.NotificationLateArrival,
		})
		return got.notifCount() > 0
	}, 3*time.Second, 20*time.Millisecond)

	got.mu.Lock()
	n := got.notifs[0]
	got.mu.Unlock()
	assert.Equal(t, "late-42", n.ID)
}

func TestSubscriberIgnoresOtherCompanies(t *testing.T) {
	f := newWSFixture()
	defer f.srv.Close()

	var mine, theirs collector
	sub := NewSubscriber(f.url)
	sub.delay = 50 * time.Millisecond
	cancelMine := sub.Subscribe(7, mine.onDelta, mine.onNotification)
	defer cancelMine()
	cancelTheirs := sub.Subscribe(8, theirs.onDelta, theirs.onNotification)
	defer cancelTheirs()

	table := models.Table{ID: 1, Status: models.TableReserved, CompanyID: 8}
	assert.Eventually(t, func() bool {
		f.hub.Publish(hub.TableTopic(8), table)
		return theirs.deltaCount() > 0
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, 0, mine.deltaCount())
}

func TestMalformedPayloadDoesNotKillTheStream(t *testing.T) {
	f := newWSFixture()
	defer f.srv.Close()

	var got collector
	sub := NewSubscriber(f.url)
	sub.delay = 50 * time.Millisecond
	cancel := sub.Subscribe(7, got.onDelta, got.onNotification)
	defer cancel()

	bogus := map[string]interface{}{"id": "not-a-number"}
	valid := models.Table{ID: 5, Status: models.TableAvailable, CompanyID: 7}
	assert.Eventually(t, func() bool {
		f.hub.Publish(hub.TableTopic(7), bogus)
		f.hub.Publish(hub.TableTopic(7), valid)
		return got.deltaCount() > 0
	}, 3*time.Second, 20*time.Millisecond)

	// Only well-formed payloads were dispatched.
	got.mu.Lock()
	defer got.mu.Unlock()
	for _, d := range got.deltas {
		assert.Equal(t, uint(5), d.ID)
	}
}

func TestUnsubscribeStopsDispatchAndIsIdempotent(t *testing.T) {
	f := newWSFixture()
	defer f.srv.Close()

	var got collector
	sub := NewSubscriber(f.url)
	sub.delay = 50 * time.Millisecond
	cancel := sub.Subscribe(7, got.onDelta, got.onNotification)

	table := models.Table{ID: 1, Status: models.TableOccupied, CompanyID: 7}
	assert.Eventually(t, func() bool {
		f.hub.Publish(hub.TableTopic(7), table)
		return got.deltaCount() > 0
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	cancel()

	seen := got.deltaCount()
	for i := 0; i < 5; i++ {
		f.hub.Publish(hub.TableTopic(7), table)
		time.Sleep(20 * time.Millisecond)
	}
	assert.Equal(t, seen, got.deltaCount())
}
