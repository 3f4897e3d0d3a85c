package kafka

import (
	"sync"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestProducerPublishAfterClose(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	p := NewProducer([]string{"localhost:9092"}, "order.created", 64, log)

	p.Close()
	require.NotPanics(t, func() {
		p.Publish([]byte("k"), []byte("v"))
	})

	require.Empty(t, p.inbox, "a late publish must not land in the closed inbox")
	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "publish after close dropped" {
			warned = true
		}
	}
	require.True(t, warned)
}

func TestProducerCloseIsIdempotent(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	p := NewProducer([]string{"localhost:9092"}, "order.created", 64, log)

	require.NotPanics(t, func() {
		p.Close()
		p.Close()
	})
}

func TestProducerPublishRacingClose(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	p := NewProducer([]string{"localhost:9092"}, "order.created", 64, log)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Publish([]byte("k"), []byte("v"))
		}()
	}
	p.Close()
	wg.Wait()
}
