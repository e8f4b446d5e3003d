package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VoterRef identifies a voter. Uniqueness is by ID; Name is only a
// display hint and never used for comparisons.
type VoterRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tally holds the vote count for one choice together with the voters
// contributing to it. Quantity always equals len(Voters).
type Tally struct {
	Quantity int        `json:"quantity"`
	Voters   []VoterRef `json:"voters"`
}

// Poll is the authoritative state of one poll. Choices and Votes are
// parallel slices bound by index; their order is fixed at creation.
type Poll struct {
	ID           string     `json:"id"`
	Question     string     `json:"question"`
	Choices      []string   `json:"choices"`
	Votes        []Tally    `json:"votes"`
	TotalVotes   int        `json:"total_votes"`
	SingleChoice bool       `json:"single_choice"`
	Confidential bool       `json:"confidential"`
	ShowResults  bool       `json:"show_results"`
	Finished     bool       `json:"finished"`
	CreatorID    string     `json:"creator_id"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishAt     *time.Time `json:"finish_at,omitempty"`
}

func NewPoll(opts CreatePollOptions, creator VoterRef) *Poll {
	return &Poll{
		ID:           uuid.NewString(),
		Question:     opts.Question,
		Choices:      opts.Choices,
		Votes:        make([]Tally, len(opts.Choices)),
		SingleChoice: opts.SingleChoice,
		Confidential: opts.IsConfidential,
		ShowResults:  opts.ShowResults,
		CreatorID:    creator.ID,
		CreatedAt:    time.Now(),
		FinishAt:     opts.FinishAt,
	}
}

// ApplyVote applies a single vote intent to the poll in place. It performs
// no I/O; persisting the updated record is the caller's responsibility.
//
// Voting for a choice the voter already occupies removes that vote. In
// single-choice mode a voter occupies at most one choice at a time, and
// TotalVotes counts the distinct voters currently assigned; switching
// choices moves the voter without changing TotalVotes. In multi-choice
// mode every choice toggles independently and TotalVotes is the sum of
// all memberships.
func (p *Poll) ApplyVote(voter VoterRef, choice int) error {
	if choice < 0 || choice >= len(p.Choices) {
		return ErrInvalidChoice
	}
	if p.Finished {
		return ErrPollFinished
	}

	tally := &p.Votes[choice]
	if i := voterIndex(tally.Voters, voter.ID); i >= 0 {
		tally.Voters = append(tally.Voters[:i], tally.Voters[i+1:]...)
		tally.Quantity--
		p.TotalVotes--
		return nil
	}

	if p.SingleChoice {
		for j := range p.Votes {
			if j == choice {
				continue
			}
			prev := &p.Votes[j]
			i := voterIndex(prev.Voters, voter.ID)
			if i < 0 {
				continue
			}
			// The voter is switching choices: TotalVotes stays put
			// since they remain a single assigned voter.
			prev.Voters = append(prev.Voters[:i], prev.Voters[i+1:]...)
			prev.Quantity--
			tally.Voters = append(tally.Voters, voter)
			tally.Quantity++
			return nil
		}
	}

	tally.Voters = append(tally.Voters, voter)
	tally.Quantity++
	p.TotalVotes++
	return nil
}

// Finish marks the poll closed. It fails if the poll is already finished
// or if the requester is not the creator; in both cases the record is
// left untouched. The scheduled-timeout path passes the stored creator id
// as requester.
func (p *Poll) Finish(requesterID string) error {
	if p.Finished {
		return ErrAlreadyFinished
	}
	if requesterID != p.CreatorID {
		return ErrNotCreator
	}
	p.Finished = true
	return nil
}

// NonVoters returns the members who appear in none of the tallies,
// preserving the order of members.
func (p *Poll) NonVoters(members []VoterRef) []VoterRef {
	voted := make(map[string]struct{})
	for _, t := range p.Votes {
		for _, v := range t.Voters {
			voted[v.ID] = struct{}{}
		}
	}

	var out []VoterRef
	for _, m := range members {
		if _, ok := voted[m.ID]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// HasVoted reports whether the voter occupies at least one tally.
func (p *Poll) HasVoted(voterID string) bool {
	for _, t := range p.Votes {
		if voterIndex(t.Voters, voterID) >= 0 {
			return true
		}
	}
	return false
}

// CheckConsistent verifies the record's internal accounting: one tally
// per choice, every tally's quantity matching its voter set, and
// TotalVotes matching the mode's counting rule. A failure means the
// record must not be persisted.
func (p *Poll) CheckConsistent() error {
	if len(p.Votes) != len(p.Choices) {
		return fmt.Errorf("%w: %d tallies for %d choices", ErrInconsistentRecord, len(p.Votes), len(p.Choices))
	}

	sum := 0
	distinct := make(map[string]struct{})
	for i, t := range p.Votes {
		if t.Quantity != len(t.Voters) {
			return fmt.Errorf("%w: choice %d quantity %d with %d voters", ErrInconsistentRecord, i, t.Quantity, len(t.Voters))
		}
		sum += t.Quantity
		for _, v := range t.Voters {
			distinct[v.ID] = struct{}{}
		}
	}

	want := sum
	if p.SingleChoice {
		want = len(distinct)
	}
	if p.TotalVotes != want {
		return fmt.Errorf("%w: total votes %d, expected %d", ErrInconsistentRecord, p.TotalVotes, want)
	}
	return nil
}

// Clone returns a deep copy, so borrowed records can be transformed
// without aliasing the stored value.
func (p *Poll) Clone() *Poll {
	c := *p
	c.Choices = append([]string(nil), p.Choices...)
	c.Votes = make([]Tally, len(p.Votes))
	for i, t := range p.Votes {
		c.Votes[i] = Tally{Quantity: t.Quantity, Voters: append([]VoterRef(nil), t.Voters...)}
	}
	if p.FinishAt != nil {
		at := *p.FinishAt
		c.FinishAt = &at
	}
	return &c
}

func voterIndex(voters []VoterRef, id string) int {
	for i, v := range voters {
		if v.ID == id {
			return i
		}
	}
	return -1
}
