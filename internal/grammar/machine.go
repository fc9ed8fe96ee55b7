package grammar

// Status is the derived status of a [Machine] after an input.
type Status int

const (
	// StatusReady means the machine accepts further input.
	StatusReady Status = iota

	// StatusFault means the machine has seen a grammar violation.
	StatusFault

	// StatusComplete means the root element was closed.
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFault:
		return "fault"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

const (
	stateCount = 16

	// startState is the state before the root element.
	startState = 0

	// finalState is reached when the root element is closed.
	finalState = stateCount

	// faultState is absorbing, every input leads back into it.
	faultState = stateCount + 1

	tableSize = stateCount + 2
)

type transitionTable [tableSize][TokenCount]int

// transition is a single (state, token) -> state entry of the grammar.
type transition struct {
	from  int
	token Token
	to    int
}

//nolint:gochecknoglobals,mnd
var transitions = []transition{
	{0, ConfigurationOpen, 1},

	{1, ResourceURIOpen, 2},
	{1, ValidateOpen, 3},
	{1, BackupOpen, 6},
	{1, OperationsOpen, 9},
	{1, ConfigurationClose, finalState},

	{2, ResourceURIClose, 1},

	{3, FileOpen, 4},
	{3, DirectoryOpen, 5},
	{3, ValidateClose, 1},
	{4, FileClose, 3},
	{5, DirectoryClose, 3},

	{6, FileOpen, 7},
	{6, DirectoryOpen, 8},
	{6, BackupClose, 1},
	{7, FileClose, 6},
	{8, DirectoryClose, 6},

	{9, CopyOpen, 10},
	{9, RemoveOpen, 15},
	{9, OperationsClose, 1},
	{10, FromOpen, 11},
	{11, FromClose, 12},
	{12, ToOpen, 13},
	{13, ToClose, 14},
	{14, CopyClose, 9},
	{15, RemoveClose, 9},
}

// newTransitionTable builds the table with every cell set to the fault state
// before the grammar's transitions are applied.
func newTransitionTable() *transitionTable {
	table := &transitionTable{}

	for s := range table {
		for t := range table[s] {
			table[s][t] = faultState
		}
	}

	for _, tr := range transitions {
		table[tr.from][tr.token] = tr.to
	}

	return table
}

// Machine is the finite-state acceptor of the configuration grammar. It is not
// safe for concurrent use.
type Machine struct {
	table   *transitionTable
	lexemes map[string]Token
	state   int
}

// NewMachine returns a pointer to a new [Machine] in its start state.
func NewMachine() *Machine {
	m := &Machine{
		table:   newTransitionTable(),
		lexemes: make(map[string]Token, TokenCount),
		state:   startState,
	}

	for t := range TokenCount {
		m.lexemes[t.Lexeme()] = t
	}

	return m
}

// Input feeds a [Token] into the machine and returns the resulting status.
// Tokens outside the alphabet move the machine into its fault state.
func (m *Machine) Input(t Token) Status {
	if !t.Valid() {
		m.state = faultState

		return m.Status()
	}

	m.state = m.table[m.state][t]

	return m.Status()
}

// InputLexeme resolves a lexeme such as "<copy>" to its [Token] and feeds it
// into the machine. An unrecognized lexeme returns [StatusFault] without
// changing the machine's state.
func (m *Machine) InputLexeme(lexeme string) (Token, Status) {
	t, ok := m.lexemes[lexeme]
	if !ok {
		return TokenCount, StatusFault
	}

	return t, m.Input(t)
}

// Lookup resolves a lexeme to its [Token] without feeding it.
func (m *Machine) Lookup(lexeme string) (Token, bool) {
	t, ok := m.lexemes[lexeme]

	return t, ok
}

// Status returns the status derived from the current state.
func (m *Machine) Status() Status {
	switch m.state {
	case finalState:
		return StatusComplete
	case faultState:
		return StatusFault
	default:
		return StatusReady
	}
}

// Reset returns the machine to its start state.
func (m *Machine) Reset() {
	m.state = startState
}
