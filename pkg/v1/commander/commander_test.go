package commander_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/MichalMitros/marketguard/pkg/v1/commander"
	"github.com/MichalMitros/marketguard/pkg/v1/commander/mocks"
	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnitSendScanCommand(t *testing.T) {
	source := faker.URL()
	listings := json.RawMessage(`[{"title":"Fluke 117","price":50,"url":"https://example.com/1"}]`)

	tests := map[string]struct {
		listings    json.RawMessage
		body        []byte
		senderError error
		wantErr     error
	}{
		"ok": {
			listings: listings,
			body:     []byte(fmt.Sprintf(`{"source":"%s","listings":%s}`, source, listings)),
		},
		"source only": {
			body: []byte(fmt.Sprintf(`{"source":"%s"}`, source)),
		},
		"sender error": {
			listings:    listings,
			body:        []byte(fmt.Sprintf(`{"source":"%s","listings":%s}`, source, listings)),
			senderError: assert.AnError,
			wantErr:     assert.AnError,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sender := mocks.NewSender(t)
			sender.On("Send", mock.Anything, tt.body).Return(tt.senderError)

			cmndr := commander.NewScanCommander(sender)
			err := cmndr.SendScanCommand(context.TODO(), source, tt.listings)

			require.ErrorIs(t, err, tt.wantErr, "should return correct error")
		})
	}
}

func TestUnitSendFlip(t *testing.T) {
	flip := commander.FlipMessage{
		Title:           "Milwaukee 2801-20",
		Query:           "milwaukee 2801 20",
		BuyPrice:        100,
		AvgResale:       200,
		Volume:          12,
		EstimatedProfit: 74,
		ROIPercent:      74,
		Flip:            true,
		NearMissReasons: []string{},
		URL:             "https://example.com/1",
		Category:        "Drills",
	}
	body := []byte(`{"title":"Milwaukee 2801-20","query":"milwaukee 2801 20","buy_price":100,"avg_resale":200,` +
		`"volume":12,"estimated_profit":74,"roi_percent":74,"flip":true,"near_miss":false,"near_miss_reasons":[],` +
		`"url":"https://example.com/1","category":"Drills"}`)

	t.Run("ok", func(t *testing.T) {
		sender := mocks.NewSender(t)
		sender.On("Send", mock.Anything, body).Return(nil)

		err := commander.NewFlipSender(sender).SendFlip(context.TODO(), flip)

		require.NoError(t, err, "shouldn't return any error")
	})

	t.Run("sender error", func(t *testing.T) {
		sender := mocks.NewSender(t)
		sender.On("Send", mock.Anything, body).Return(assert.AnError)

		err := commander.NewFlipSender(sender).SendFlip(context.TODO(), flip)

		require.ErrorIs(t, err, assert.AnError, "should return sender error")
	})
}

func TestUnitDecodeFlipMessage(t *testing.T) {
	flip, err := commander.DecodeFlipMessage([]byte(`{"title":"Fluke 117","estimated_profit":12.5,"flip":false,` +
		`"near_miss":true,"near_miss_reasons":["profit within $5 of minimum"]}`))

	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, "Fluke 117", flip.Title, "should decode title")
	assert.Equal(t, 12.5, flip.EstimatedProfit, "should decode profit")
	assert.Equal(t, []string{"profit within $5 of minimum"}, flip.NearMissReasons, "should decode near-miss reasons")

	_, err = commander.DecodeFlipMessage([]byte(`{"title":`))
	require.ErrorContains(t, err, "can't decode flip message", "should return decoding error")
}
