package entangled

import "strings"

// RandomToken in a superposition config draws one extra random legal symbol.
const RandomToken = "RNG"

// StartingStone is a pre-placed stone from a starting-stone config.
type StartingStone struct {
	Color  Color
	Symbol string
	Board  int // Board1 or Board2
}

// splitConfig uppercases and trims a comma-separated config, dropping
// trailing separators. An empty config yields no tokens.
func splitConfig(cfg string) []string {
	cfg = strings.TrimRight(strings.ToUpper(strings.TrimSpace(cfg)), ", ")
	if cfg == "" {
		return nil
	}
	tokens := strings.Split(cfg, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	return tokens
}

// ParseStartingStones parses "<B|W><symbol><1|2>" tokens. Malformed tokens
// are returned in skipped rather than failing the parse.
func ParseStartingStones(cfg string) (stones []StartingStone, skipped []string) {
	for _, tok := range splitConfig(cfg) {
		if len(tok) != 3 {
			skipped = append(skipped, tok)
			continue
		}
		var color Color
		switch tok[0] {
		case 'B':
			color = Black
		case 'W':
			color = White
		default:
			skipped = append(skipped, tok)
			continue
		}
		var board int
		switch tok[2] {
		case '1':
			board = Board1
		case '2':
			board = Board2
		default:
			skipped = append(skipped, tok)
			continue
		}
		stones = append(stones, StartingStone{Color: color, Symbol: tok[1:2], Board: board})
	}
	return stones, skipped
}

// SuperpositionConfig is a parsed superposition config before it is checked
// against a board.
type SuperpositionConfig struct {
	Symbols []string
	Random  int
}

// ParseSuperposition parses a list of symbols and RNG tokens. Empty and
// duplicate tokens are errors; board-dependent checks happen in NewEngine.
func ParseSuperposition(cfg string) (SuperpositionConfig, error) {
	var out SuperpositionConfig
	seen := make(map[string]bool)
	for _, tok := range splitConfig(cfg) {
		switch {
		case tok == RandomToken:
			out.Random++
		case tok == "":
			return SuperpositionConfig{}, &ConfigError{Reason: "empty token"}
		case seen[tok]:
			return SuperpositionConfig{}, &ConfigError{Token: tok, Reason: "duplicate symbol"}
		default:
			seen[tok] = true
			out.Symbols = append(out.Symbols, tok)
		}
	}
	return out, nil
}
