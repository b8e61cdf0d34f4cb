package analytics

import (
	"sort"

	"github.com/senzi/weibochat-insight/internal/dataset"
)

const topUserLimit = 20

// TopUser is one row of the top-talkers view.
type TopUser struct {
	FromUID      string `json:"from_uid"`
	ScreenName   string `json:"screen_name"`
	MessageCount int    `json:"message_count"`
}

// TopUsers counts messages per (from_uid, screen_name) and returns the top 20
// by count. The sort is stable, so ties keep first-appearance order.
func TopUsers(ds *dataset.Dataset) []TopUser {
	type key struct{ uid, name string }
	counts := make(map[key]int)
	order := make([]key, 0)

	for _, rec := range ds.Records {
		k := key{rec.FromUID, rec.ScreenName}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	users := make([]TopUser, 0, len(order))
	for _, k := range order {
		users = append(users, TopUser{FromUID: k.uid, ScreenName: k.name, MessageCount: counts[k]})
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].MessageCount > users[j].MessageCount
	})

	if len(users) > topUserLimit {
		users = users[:topUserLimit]
	}
	return users
}
