package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoiseFilterMatchesMarketingPhrases(t *testing.T) {
	filter := NewNoiseFilter(nil)

	tests := []struct {
		name  string
		text  string
		from  string
		noise bool
	}{
		{"prize scam", "congratulations you won a free trial!! act now!", "promo@dealsnow.biz", true},
		{"urgency phrasing", "limited time offer on premium plans", "deals@shop.com", true},
		{"legit renewal", "your netflix subscription has been renewed for $15.99", "billing@netflix.com", false},
		{"disposable mailbox", "your subscription has been renewed", "noreply@mailinator.com", true},
		{"unsubscribe phrasing", "click here to unsubscribe from these updates", "news@letter.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := &NormalizedContent{Text: tt.text}
			assert.Equal(t, tt.noise, filter.IsNoise(content, tt.from))
		})
	}
}

func TestNoiseFilterExtraPhrases(t *testing.T) {
	filter := NewNoiseFilter([]string{"Flash Sale"})

	content := &NormalizedContent{Text: "flash sale ends tonight"}
	assert.True(t, filter.IsNoise(content, "promo@store.com"))
}

func TestSenderDomain(t *testing.T) {
	tests := []struct {
		from   string
		domain string
	}{
		{"billing@netflix.com", "netflix.com"},
		{"Netflix Billing <billing@netflix.com>", "netflix.com"},
		{"BILLING@NETFLIX.COM", "netflix.com"},
		{"not-an-address", ""},
		{"trailing@", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.domain, senderDomain(tt.from), "from=%q", tt.from)
	}
}
