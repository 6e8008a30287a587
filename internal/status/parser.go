package status

// Options selects between the known variants of the player row layout.
type Options struct {
	// PreferTrailingNumericFields takes ping and loss from the last two bare
	// numbers of a player row. When false the first two are used, which misreads
	// names such as "Agent 47" but matches dumps that print extra numeric
	// columns after loss.
	PreferTrailingNumericFields bool

	// RequireState fails a row that prints neither "active" nor "spawning".
	RequireState bool
}

func DefaultOptions() Options {
	return Options{PreferTrailingNumericFields: true}
}

// Parser is immutable and safe for concurrent use.
type Parser struct {
	opts Options
}

func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse decomposes a status dump. Either every field is extracted or an error
// naming the first failed field is returned; a partial ServerStatus is never
// returned.
func (p *Parser) Parse(text string) (ServerStatus, error) {
	out, err := extractServer(text)
	if err != nil {
		return ServerStatus{}, err
	}
	out.Players, err = extractPlayers(text, p.opts)
	if err != nil {
		return ServerStatus{}, err
	}
	return out, nil
}

var defaultParser = New(DefaultOptions())

// Parse uses DefaultOptions.
func Parse(text string) (ServerStatus, error) {
	return defaultParser.Parse(text)
}
