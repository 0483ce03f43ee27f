// Package demo generates the organization member dataset used by the demo
// command and the examples.
package demo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Member is one organization member.
type Member struct {
	ID            string  `mapstructure:"id"`
	Name          string  `mapstructure:"name"`
	Email         string  `mapstructure:"email"`
	Role          string  `mapstructure:"role"`
	OCRConfidence float64 `mapstructure:"ocr_confidence"`
	Documents     int     `mapstructure:"documents"`
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Barbara", "Ken", "Margaret", "Dennis", "Frances", "Edsger", "Radia", "Donald", "Sophie"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie", "Allen", "Dijkstra", "Perlman", "Knuth", "Wilson"}
	roles      = []string{"owner", "admin", "member", "member", "viewer"}
)

// Members generates n members. Ids are name-based uuids, so the same
// member keeps the same id across runs.
func Members(n int) []Member {
	members := make([]Member, n)
	for i := range n {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1)

		members[i] = Member{
			ID:            uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
			Name:          first + " " + last,
			Email:         email,
			Role:          roles[(i*7)%len(roles)],
			OCRConfidence: float64(55+(i*37)%45) / 100,
			Documents:     (i * 11) % 17,
		}
	}
	return members
}
