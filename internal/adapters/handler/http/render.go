package http

import (
	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
)

// pollMessage is the rendered form of a poll delivered back to the chat
// room. Running tallies are omitted while the poll is open unless it was
// created with show_results=always, and voter names are omitted entirely
// for confidential polls.
type pollMessage struct {
	PollID       string        `json:"poll_id"`
	Question     string        `json:"question"`
	SingleChoice bool          `json:"single_choice"`
	Confidential bool          `json:"confidential"`
	Finished     bool          `json:"finished"`
	Choices      []choiceBlock `json:"choices"`
	TotalVotes   *int          `json:"total_votes,omitempty"`
}

type choiceBlock struct {
	Index    int      `json:"index"`
	Label    string   `json:"label"`
	Quantity *int     `json:"quantity,omitempty"`
	Voters   []string `json:"voters,omitempty"`
}

// modalView is the choice-collection form opened by the create action.
// add_choice re-renders it with every entered value preserved plus one
// empty slot.
type modalView struct {
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

func renderPoll(p *domain.Poll) pollMessage {
	showTallies := p.ShowResults || p.Finished
	showVoters := showTallies && !p.Confidential

	msg := pollMessage{
		PollID:       p.ID,
		Question:     p.Question,
		SingleChoice: p.SingleChoice,
		Confidential: p.Confidential,
		Finished:     p.Finished,
		Choices:      make([]choiceBlock, len(p.Choices)),
	}

	for i, label := range p.Choices {
		block := choiceBlock{Index: i, Label: label}
		if showTallies {
			quantity := p.Votes[i].Quantity
			block.Quantity = &quantity
		}
		if showVoters {
			for _, v := range p.Votes[i].Voters {
				block.Voters = append(block.Voters, v.Name)
			}
		}
		msg.Choices[i] = block
	}

	if showTallies {
		total := p.TotalVotes
		msg.TotalVotes = &total
	}
	return msg
}

func renderModal(question string, entered []string) modalView {
	// Keep what the user typed so far and add one empty slot.
	choices := make([]string, 0, len(entered)+1)
	choices = append(choices, entered...)
	choices = append(choices, "")
	for len(choices) < 2 {
		choices = append(choices, "")
	}
	return modalView{
		Title:    "Create poll",
		Question: question,
		Choices:  choices,
	}
}
