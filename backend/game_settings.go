package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	BlackType   PlayerType `json:"-"`
	WhiteType   PlayerType `json:"-"`
	BlackStarts bool       `json:"black_starts"`
}

// DefaultGameSettings puts the engine on black, which also moves first.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		BlackType:   PlayerAI,
		WhiteType:   PlayerHuman,
		BlackStarts: true,
	}
}

// SettingsForAI returns settings with the engine on aiColor and a human on
// the other side.
func SettingsForAI(aiColor PlayerColor) GameSettings {
	settings := DefaultGameSettings()
	settings.BlackType = PlayerHuman
	settings.WhiteType = PlayerHuman
	if aiColor == PlayerBlack {
		settings.BlackType = PlayerAI
	} else {
		settings.WhiteType = PlayerAI
	}
	return settings
}

func (s GameSettings) TypeFor(player PlayerColor) PlayerType {
	if player == PlayerBlack {
		return s.BlackType
	}
	return s.WhiteType
}
