package dialog

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/ryssroad/discord-ai/internal/model"
)

// Buckets is the per-account triage of newly observed messages. A message
// lands in exactly one bucket; messages authored by the account itself are
// excluded before bucketing.
type Buckets struct {
	DirectReplies []model.DialogRecord // replies to the account's own messages
	Fresh         []model.DialogRecord // messages with no reference at all
	ThirdParty    []model.DialogRecord // replies to someone other than the account
}

// Empty reports whether no bucket holds any message.
func (b Buckets) Empty() bool {
	return len(b.DirectReplies) == 0 && len(b.Fresh) == 0 && len(b.ThirdParty) == 0
}

// Classify partitions raw channel messages into priority buckets relative to
// one account. Pure function: no I/O, deterministic for identical input.
func Classify(raw []model.RawMessage, accountID string) Buckets {
	var b Buckets

	for _, msg := range raw {
		if msg.Author.ID == accountID {
			continue
		}

		rec := model.DialogRecord{
			ID:        msg.ID,
			Content:   msg.Content,
			AuthorID:  msg.Author.ID,
			Timestamp: msg.Timestamp,
		}
		if rec.Timestamp == "" {
			rec.Timestamp = strconv.FormatInt(time.Now().Unix(), 10)
		}

		switch {
		case msg.Referenced == nil:
			b.Fresh = append(b.Fresh, rec)
		case msg.Referenced.Author.ID == accountID:
			rec.ReferencedMessageID = msg.Referenced.ID
			b.DirectReplies = append(b.DirectReplies, rec)
		default:
			rec.ReferencedMessageID = msg.Referenced.ID
			b.ThirdParty = append(b.ThirdParty, rec)
		}
	}

	return b
}

// Select picks the messages to answer this cycle. Strict priority order:
// a non-empty higher bucket suppresses the lower ones entirely.
//
// Direct replies get the most attention: the bucket is shuffled and 70% of it
// answered, never fewer than one. Fresh messages and third-party replies get
// a single uniformly random pick. An empty result signals the caller to
// consider an ambient post instead.
func Select(rng *rand.Rand, b Buckets) []model.DialogRecord {
	if n := len(b.DirectReplies); n > 0 {
		k := n * 7 / 10
		if k == 0 {
			k = 1
		}
		shuffled := make([]model.DialogRecord, n)
		copy(shuffled, b.DirectReplies)
		rng.Shuffle(n, func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[:k]
	}

	if len(b.Fresh) > 0 {
		return []model.DialogRecord{b.Fresh[rng.Intn(len(b.Fresh))]}
	}

	if len(b.ThirdParty) > 0 {
		return []model.DialogRecord{b.ThirdParty[rng.Intn(len(b.ThirdParty))]}
	}

	return nil
}
