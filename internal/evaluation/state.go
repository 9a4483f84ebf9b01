package evaluation

// State — этап одной отправки оценки.
type State string

const (
	StateNew             State = "new"
	StateHeaderPersisted State = "header_persisted"
	StateAnswersReplaced State = "answers_replaced"
	StateCommitted       State = "committed"
	StateFailed          State = "failed"
)

var nextState = map[State]State{
	StateNew:             StateHeaderPersisted,
	StateHeaderPersisted: StateAnswersReplaced,
	StateAnswersReplaced: StateCommitted,
}

// submission отслеживает этапы; Failed достижим из любого нетерминального.
type submission struct {
	state State
}

func (s *submission) advance(to State) bool {
	if nextState[s.state] != to {
		return false
	}
	s.state = to
	return true
}

func (s *submission) fail() {
	if s.state != StateCommitted {
		s.state = StateFailed
	}
}

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)
