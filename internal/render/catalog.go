package render

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	msgWelcome           = "welcome"
	msgServerFull        = "server.full"
	msgJoined            = "session.joined"
	msgWaiting           = "session.waiting"
	msgMatchStarted      = "session.match_started"
	msgTurn              = "game.turn"
	msgWin               = "game.win"
	msgDraw              = "game.draw"
	msgNewGame           = "game.new"
	msgLeft              = "session.left"
	msgInvalidMove       = "move.invalid"
	msgNotYourTurn       = "move.not_your_turn"
	msgInvalidCoordinate = "move.invalid_coordinate"
	msgCellOccupied      = "move.cell_occupied"
	msgNotStarted        = "move.not_started"
	msgSessionEnded      = "move.session_ended"
	msgMalformedMove     = "move.malformed"
)

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		msgWelcome:           "Welcome to tic-tac-toe! Enter your name:",
		msgServerFull:        "Server full. Try again later.",
		msgJoined:            "You are %s (%s).",
		msgWaiting:           "Waiting for an opponent...",
		msgMatchStarted:      "Players connected: %s (%s) vs %s (%s)",
		msgTurn:              "%s (%s), it's your turn!",
		msgWin:               "%s (%s) wins!",
		msgDraw:              "Draw!",
		msgNewGame:           "New game started!",
		msgLeft:              "%s left the game. Session over.",
		msgInvalidMove:       "Invalid move. Try again.",
		msgNotYourTurn:       "It's not your turn.",
		msgInvalidCoordinate: "Row and column must be between 0 and 2.",
		msgCellOccupied:      "That cell is already taken.",
		msgNotStarted:        "Waiting for an opponent to join.",
		msgSessionEnded:      "The session is over.",
		msgMalformedMove:     "Enter a move as: <row> <col>",
	},
	language.Portuguese: {
		msgWelcome:           "Bem-vindo ao jogo do galo! Insira o seu nome:",
		msgServerFull:        "Servidor cheio. Tenta novamente mais tarde.",
		msgJoined:            "És %s (%s).",
		msgWaiting:           "À espera de um adversário...",
		msgMatchStarted:      "Jogadores conectados: %s (%s) vs %s (%s)",
		msgTurn:              "%s (%s) é a tua vez!",
		msgWin:               "%s (%s) venceu!",
		msgDraw:              "Empate!",
		msgNewGame:           "Novo jogo iniciado!",
		msgLeft:              "%s saiu do jogo. Sessão terminada.",
		msgInvalidMove:       "Movimento inválido. Tenta novamente.",
		msgNotYourTurn:       "Não é a tua vez.",
		msgInvalidCoordinate: "Linha e coluna devem estar entre 0 e 2.",
		msgCellOccupied:      "Essa casa já está ocupada.",
		msgNotStarted:        "À espera que um adversário se junte.",
		msgSessionEnded:      "A sessão terminou.",
		msgMalformedMove:     "Insira a jogada como: <linha> <coluna>",
	},
}

// supported lists the catalog locales, default first.
var supported = []language.Tag{language.English, language.Portuguese}

// register adds every catalog entry to the x/text default catalog.
func register() error {
	for tag, messages := range catalogs {
		for key, value := range messages {
			if err := message.SetString(tag, key, value); err != nil {
				return fmt.Errorf("register %s message %q: %w", tag, key, err)
			}
		}
	}
	return nil
}
