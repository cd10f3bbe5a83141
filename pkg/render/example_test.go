package render_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/render"
)

func ExampleOverlapDOT() {
	zero, two := 0, 2
	f := board.File{Projects: []board.ProjectTasks{{
		Project: "HEL",
		Tasks: []board.Task{
			{ID: "a", Title: "Login"},
			{ID: "b", Title: "Search", StartCol: &zero, EndCol: &two},
		},
	}}}
	dot := render.OverlapDOT(board.Build(f, board.BuildOptions{}))
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "--") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "a" -- "b";
}

func ExampleStatus() {
	for _, s := range []string{"En cours de dev", "Terminé", "QA"} {
		l, _ := render.Status(s)
		fmt.Println(l.Label)
	}
	// Output:
	// En cours
	// Done
	// QA
}
