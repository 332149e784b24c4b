package state

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strconv"

	"persona-board/internal/model"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short random base-36 token. Collisions are not checked;
// the id space is large relative to the number of categories in one widget.
func GenerateID() string {
	var b [7]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("state: read random bytes: %v", err))
	}
	out := make([]byte, len(b))
	for i, x := range b {
		out[i] = base36[int(x)%len(base36)]
	}
	return string(out)
}

// NewCategoryID returns a fresh category id (cat-<token>).
func NewCategoryID() string {
	return model.CategoryIDPrefix + GenerateID()
}

// ProfileValues is the minimal view of a profile collection the allocator needs.
// Both the synchronized map and syncstore.MemoryMap satisfy it.
type ProfileValues interface {
	Values() []model.Profile
}

var profileNumberRe = regexp.MustCompile(`profile-(\d+)`)

// ProfileNumber extracts N from an id containing profile-<N>. Ids without the
// pattern contribute 0.
func ProfileNumber(id string) int {
	m := profileNumberRe.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// NextProfileNumber returns max(N)+1 over the current profiles, or 1 when
// there are none. The counter is derived from current contents only, so a
// number freed by deleting the highest profile is issued again.
func NextProfileNumber(profiles ProfileValues) int {
	values := profiles.Values()
	if len(values) == 0 {
		return 1
	}
	max := 0
	for _, p := range values {
		if n := ProfileNumber(p.ID); n > max {
			max = n
		}
	}
	return max + 1
}

func ProfileID(n int) string {
	return model.ProfileIDPrefix + strconv.Itoa(n)
}
