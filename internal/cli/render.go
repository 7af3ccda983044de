package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/NikoM94/JSChess/internal/board"
)

var (
	lightTile  = color.New(color.BgHiWhite)
	darkTile   = color.New(color.BgGreen)
	markTile   = color.New(color.BgYellow)
	whiteInk   = color.New(color.FgHiBlue, color.Bold)
	blackInk   = color.New(color.FgBlack, color.Bold)
	checkStyle = color.New(color.FgYellow, color.Bold)
	overStyle  = color.New(color.FgRed, color.Bold)
	infoStyle  = color.New(color.FgCyan)
	errStyle   = color.New(color.FgRed)
)

// Render draws pos with rank 8 at the top, or rank 1 when flip is set.
// Squares in marks are highlighted.
func Render(w io.Writer, pos *board.Position, flip bool, marks []board.Square) {
	marked := make(map[board.Square]bool, len(marks))
	for _, sq := range marks {
		marked[sq] = true
	}

	files := "   a  b  c  d  e  f  g  h"
	if flip {
		files = "   h  g  f  e  d  c  b  a"
	}

	var sb strings.Builder
	for row := 0; row < 8; row++ {
		rank := 7 - row
		if flip {
			rank = row
		}
		fmt.Fprintf(&sb, "%d ", rank+1)
		for col := 0; col < 8; col++ {
			file := col
			if flip {
				file = 7 - col
			}
			tile, _ := pos.Get(file, rank)
			sb.WriteString(cell(pos, tile, marked[tile.Square]))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(files + "\n")
	io.WriteString(w, sb.String())
}

func cell(pos *board.Position, tile board.Tile, marked bool) string {
	bg := darkTile
	switch {
	case marked:
		bg = markTile
	case tile.Color() == board.White:
		bg = lightTile
	}

	text := " . "
	if marked {
		text = " * "
	}
	if !tile.Empty() {
		pc, _ := pos.Piece(tile.Occupant)
		ink := whiteInk
		if pc.Color == board.Black {
			ink = blackInk
		}
		text = " " + ink.Sprint(string(pc.Char())) + " "
	}
	return bg.Sprint(text)
}
