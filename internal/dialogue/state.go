package dialogue

// State is the conversational position of a single chat. The set of
// implementations is closed; Machine.Transition switches over all of them.
type State interface {
	StateName() string
	isState()
}

// Start is the initial state of every chat.
type Start struct{}

// AwaitingName waits for the user to send their name.
type AwaitingName struct{}

// MenuSelection shows the top-level keyboard to a named user.
type MenuSelection struct {
	Name string
}

// AwaitingSoccerChoice waits for a soccer sub-option.
type AwaitingSoccerChoice struct {
	Name string
}

// AwaitingMovieChoice waits for a movie sub-option.
type AwaitingMovieChoice struct {
	Name string
}

// AwaitingCryptoChoice waits for a crypto sub-option.
type AwaitingCryptoChoice struct {
	Name string
}

// AwaitingPromptChoice forwards every button press to the conversational provider.
type AwaitingPromptChoice struct {
	Context string
}

func (Start) StateName() string                { return "start" }
func (AwaitingName) StateName() string         { return "awaiting_name" }
func (MenuSelection) StateName() string        { return "menu_selection" }
func (AwaitingSoccerChoice) StateName() string { return "awaiting_soccer_choice" }
func (AwaitingMovieChoice) StateName() string  { return "awaiting_movie_choice" }
func (AwaitingCryptoChoice) StateName() string { return "awaiting_crypto_choice" }
func (AwaitingPromptChoice) StateName() string { return "awaiting_prompt_choice" }

func (Start) isState()                {}
func (AwaitingName) isState()         {}
func (MenuSelection) isState()        {}
func (AwaitingSoccerChoice) isState() {}
func (AwaitingMovieChoice) isState()  {}
func (AwaitingCryptoChoice) isState() {}
func (AwaitingPromptChoice) isState() {}

// IsStart reports whether st is the initial state. A nil state counts as Start.
func IsStart(st State) bool {
	if st == nil {
		return true
	}
	_, ok := st.(Start)
	return ok
}
