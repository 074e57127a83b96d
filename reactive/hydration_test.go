package reactive_test

import (
	"encoding/json"
	"testing"

	"github.com/delaneyj/framesignal/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should mirror every write on the producing side
func TestHydrationProducer(t *testing.T) {
	rs := newSystem(t)
	count := reactive.Hydrated(rs, "count", 1)
	name := reactive.Hydrated(rs, "", "ada")
	reactive.Hydrated(rs, "", []int{1, 2})
	assert.False(t, rs.IsHydrationConsumer())

	count.SetValue(5)
	state, err := rs.HydrationState()
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":5,"ssr_1":"ada","ssr_2":[1,2]}`, string(state))

	name.SetValue("grace")
	state, err = rs.HydrationState()
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":5,"ssr_1":"grace","ssr_2":[1,2]}`, string(state))
}

// should consume each snapshot entry once
func TestHydrationConsumer(t *testing.T) {
	snapshot := map[string]json.RawMessage{
		"count": json.RawMessage(`7`),
		"ssr_1": json.RawMessage(`{"open":true}`),
		"bad":   json.RawMessage(`"not a number"`),
	}
	rs := newSystem(t, reactive.WithHydrationSnapshot(snapshot))
	assert.True(t, rs.IsHydrationConsumer())

	count := reactive.Hydrated(rs, "count", 1)
	assert.Equal(t, 7, count.Value())

	type panel struct {
		Open bool `json:"open"`
	}
	p := reactive.Hydrated(rs, "", panel{})
	assert.True(t, p.Value().Open)

	bad := reactive.Hydrated(rs, "bad", 3)
	assert.Equal(t, 3, bad.Value())

	again := reactive.Hydrated(rs, "count", 1)
	assert.Equal(t, 1, again.Value())
	assert.Empty(t, rs.PendingHydration())

	count.SetValue(9)
	state, err := rs.HydrationState()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(state))
}

// should round trip a producer's state into a consumer
func TestHydrationRoundTrip(t *testing.T) {
	server := newSystem(t)
	reactive.Hydrated(server, "user", map[string]string{"name": "ada"})
	reactive.Hydrated(server, "visits", 3).SetValue(4)
	state, err := server.HydrationState()
	require.NoError(t, err)

	var snapshot map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(state, &snapshot))
	client := newSystem(t, reactive.WithHydrationSnapshot(snapshot))
	assert.Equal(t, []string{"user", "visits"}, client.PendingHydration())

	user := reactive.Hydrated(client, "user", map[string]string{})
	visits := reactive.Hydrated(client, "visits", 0)
	assert.Equal(t, "ada", user.Value()["name"])
	assert.Equal(t, 4, visits.Value())
}
