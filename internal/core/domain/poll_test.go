package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = VoterRef{ID: "u1", Name: "alice"}
	bob   = VoterRef{ID: "u2", Name: "bob"}
	carol = VoterRef{ID: "u3", Name: "carol"}
)

func newTestPoll(t *testing.T, singleChoice bool) *Poll {
	t.Helper()
	poll := NewPoll(CreatePollOptions{
		Question:     "Lunch?",
		Choices:      []string{"Pizza", "Sushi", "Salad"},
		ShowResults:  true,
		SingleChoice: singleChoice,
	}, alice)

	require.Len(t, poll.Votes, 3)
	require.Equal(t, 0, poll.TotalVotes)
	require.False(t, poll.Finished)
	require.NotEmpty(t, poll.ID)
	return poll
}

func TestNewPollStartsEmpty(t *testing.T) {
	poll := newTestPoll(t, false)

	for _, tally := range poll.Votes {
		assert.Equal(t, 0, tally.Quantity)
		assert.Empty(t, tally.Voters)
	}
	assert.Equal(t, alice.ID, poll.CreatorID)
	require.NoError(t, poll.CheckConsistent())
}

func TestApplyVoteSingleChoiceSwitch(t *testing.T) {
	poll := newTestPoll(t, true)

	require.NoError(t, poll.ApplyVote(alice, 0))
	require.NoError(t, poll.ApplyVote(alice, 1))

	assert.Empty(t, poll.Votes[0].Voters)
	assert.Equal(t, []VoterRef{alice}, poll.Votes[1].Voters)
	assert.Equal(t, 1, poll.TotalVotes)
	require.NoError(t, poll.CheckConsistent())
}

func TestApplyVoteSingleChoiceToggleOff(t *testing.T) {
	poll := newTestPoll(t, true)

	require.NoError(t, poll.ApplyVote(alice, 0))
	require.NoError(t, poll.ApplyVote(alice, 0))

	assert.Empty(t, poll.Votes[0].Voters)
	assert.Equal(t, 0, poll.TotalVotes)
	require.NoError(t, poll.CheckConsistent())
}

func TestApplyVoteMultiChoiceIndependent(t *testing.T) {
	poll := newTestPoll(t, false)

	require.NoError(t, poll.ApplyVote(alice, 0))
	require.NoError(t, poll.ApplyVote(alice, 1))

	assert.Equal(t, []VoterRef{alice}, poll.Votes[0].Voters)
	assert.Equal(t, []VoterRef{alice}, poll.Votes[1].Voters)
	assert.Equal(t, 2, poll.TotalVotes)
	require.NoError(t, poll.CheckConsistent())
}

func TestApplyVoteMultiChoiceToggleOff(t *testing.T) {
	poll := newTestPoll(t, false)

	require.NoError(t, poll.ApplyVote(alice, 2))
	require.NoError(t, poll.ApplyVote(bob, 2))
	require.NoError(t, poll.ApplyVote(alice, 2))

	assert.Equal(t, []VoterRef{bob}, poll.Votes[2].Voters)
	assert.Equal(t, 1, poll.TotalVotes)
	require.NoError(t, poll.CheckConsistent())
}

func TestApplyVoteOutOfRange(t *testing.T) {
	poll := newTestPoll(t, true)

	assert.ErrorIs(t, poll.ApplyVote(alice, -1), ErrInvalidChoice)
	assert.ErrorIs(t, poll.ApplyVote(alice, 3), ErrInvalidChoice)
	assert.Equal(t, 0, poll.TotalVotes)
}

func TestApplyVoteFinishedPoll(t *testing.T) {
	poll := newTestPoll(t, true)
	require.NoError(t, poll.ApplyVote(bob, 1))
	require.NoError(t, poll.Finish(alice.ID))

	before := poll.Clone()
	assert.ErrorIs(t, poll.ApplyVote(carol, 0), ErrPollFinished)
	assert.Equal(t, before, poll)
}

// Every tally keeps quantity == len(voters) and TotalVotes matches the
// mode's counting rule across arbitrary vote sequences.
func TestVoteSequencesKeepAccounting(t *testing.T) {
	tests := []struct {
		name         string
		singleChoice bool
		votes        []struct {
			voter  VoterRef
			choice int
		}
		wantTotal int
	}{
		{
			name:         "single choice churn",
			singleChoice: true,
			votes: []struct {
				voter  VoterRef
				choice int
			}{
				{alice, 0}, {bob, 0}, {alice, 1}, {carol, 2}, {bob, 0}, {bob, 2}, {alice, 1},
			},
			// bob toggled off then rejoined choice 2, alice toggled off.
			wantTotal: 2,
		},
		{
			name:         "multi choice churn",
			singleChoice: false,
			votes: []struct {
				voter  VoterRef
				choice int
			}{
				{alice, 0}, {alice, 1}, {bob, 1}, {alice, 0}, {carol, 2},
			},
			wantTotal: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			poll := newTestPoll(t, tc.singleChoice)
			for _, v := range tc.votes {
				require.NoError(t, poll.ApplyVote(v.voter, v.choice))
			}

			require.NoError(t, poll.CheckConsistent())
			assert.Equal(t, tc.wantTotal, poll.TotalVotes)
		})
	}
}

func TestFinishGuards(t *testing.T) {
	poll := newTestPoll(t, false)

	err := poll.Finish(bob.ID)
	assert.ErrorIs(t, err, ErrNotCreator)
	assert.False(t, poll.Finished)

	require.NoError(t, poll.Finish(alice.ID))
	assert.True(t, poll.Finished)

	err = poll.Finish(alice.ID)
	assert.ErrorIs(t, err, ErrAlreadyFinished)
	assert.True(t, poll.Finished)
}

func TestNonVotersPreservesOrder(t *testing.T) {
	poll := newTestPoll(t, false)
	require.NoError(t, poll.ApplyVote(bob, 1))

	missing := poll.NonVoters([]VoterRef{alice, bob, carol})
	assert.Equal(t, []VoterRef{alice, carol}, missing)

	require.NoError(t, poll.ApplyVote(alice, 0))
	require.NoError(t, poll.ApplyVote(carol, 2))
	assert.Empty(t, poll.NonVoters([]VoterRef{alice, bob, carol}))
}

func TestCheckConsistentDetectsDrift(t *testing.T) {
	poll := newTestPoll(t, false)
	require.NoError(t, poll.ApplyVote(alice, 0))

	poll.TotalVotes = 5
	assert.ErrorIs(t, poll.CheckConsistent(), ErrInconsistentRecord)

	poll.TotalVotes = 1
	poll.Votes[0].Quantity = 2
	assert.ErrorIs(t, poll.CheckConsistent(), ErrInconsistentRecord)
}

func TestCloneIsIndependent(t *testing.T) {
	poll := newTestPoll(t, true)
	require.NoError(t, poll.ApplyVote(alice, 0))

	clone := poll.Clone()
	require.NoError(t, clone.ApplyVote(bob, 1))
	require.NoError(t, clone.ApplyVote(alice, 0))

	assert.Equal(t, 1, poll.TotalVotes)
	assert.Equal(t, []VoterRef{alice}, poll.Votes[0].Voters)
}

func TestPollJSONRoundTrip(t *testing.T) {
	finishAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	poll := NewPoll(CreatePollOptions{
		Question:       "Deploy on Friday?",
		Choices:        []string{"Yes", "No"},
		IsConfidential: true,
		SingleChoice:   true,
		FinishAt:       &finishAt,
	}, bob)
	require.NoError(t, poll.ApplyVote(alice, 0))
	require.NoError(t, poll.ApplyVote(carol, 1))

	data, err := json.Marshal(poll)
	require.NoError(t, err)

	var got Poll
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, poll.ID, got.ID)
	assert.Equal(t, poll.Votes, got.Votes)
	assert.Equal(t, poll.TotalVotes, got.TotalVotes)
	assert.Equal(t, poll.Confidential, got.Confidential)
	assert.True(t, poll.FinishAt.Equal(*got.FinishAt))
}
