package command

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/joeycumines/goap/internal/goap"
)

func lumberjackResult() goap.Result {
	buy := goap.NewAction("BuyAxe", 2)
	chop := goap.NewAction("ChopTree", 1.5)
	return goap.Result{
		Actions:  []goap.Action{buy, chop},
		Cost:     3.5,
		Explored: 4,
		Leaves:   2,
	}
}

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode   string
		styled bool
	}{
		{"", false},
		{colorAuto, false},
		{colorAlways, true},
		{colorNever, false},
	}
	for _, tt := range tests {
		r, err := newRenderer(&bytes.Buffer{}, tt.mode)
		if err != nil {
			t.Fatalf("mode %q: %v", tt.mode, err)
		}
		if r.styled != tt.styled {
			t.Fatalf("mode %q: expected styled=%v", tt.mode, tt.styled)
		}
	}

	if _, err := newRenderer(&bytes.Buffer{}, "sometimes"); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestRenderer_WritePlanPlain(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r, _ := newRenderer(&buf, colorNever)

	r.writePlan(planReport{File: "x.yaml", Name: "x", Result: lumberjackResult()})

	want := "== x (x.yaml)\n" +
		"STEP  ACTION    COST  TOTAL\n" +
		"1     BuyAxe    2     2\n" +
		"2     ChopTree  1.5   3.5\n" +
		"cost: 3.5  explored: 4  leaves: 2\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestRenderer_WritePlanStyled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r, _ := newRenderer(&buf, colorAlways)

	r.writePlan(planReport{File: "x.yaml", Result: lumberjackResult()})

	output := buf.String()
	if !strings.Contains(output, "\x1b[") {
		t.Fatalf("expected ANSI styling, got %q", output)
	}
	// box drawing from the table border
	if !strings.Contains(output, "│") {
		t.Fatalf("expected table borders, got %q", output)
	}
	for _, want := range []string{"STEP", "BuyAxe", "ChopTree", "3.5"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected output to contain %q, got %q", want, output)
		}
	}
}

func TestRenderer_WritePlanFailures(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r, _ := newRenderer(&buf, colorNever)

	r.writePlan(planReport{File: "a.yaml", Result: goap.Result{Explored: 7}})
	r.writePlan(planReport{File: "b.yaml", Err: errors.New("boom")})

	want := "== a.yaml\nno plan found (explored 7)\n== b.yaml\nerror: boom\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestRenderer_EventAndFacts(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r, _ := newRenderer(&buf, colorNever)

	r.event(true, "plan found: %s", stepNames(lumberjackResult().Actions))
	r.facts("state:", goap.WorldState{"b": 2, "a": true})

	want := "plan found: BuyAxe -> ChopTree\nstate:\n  a: true\n  b: 2\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	styled, _ := newRenderer(&buf, colorAlways)
	styled.event(false, "plan aborted by %s", "ChopTree")
	if got := buf.String(); !strings.Contains(got, "\x1b[") || lipgloss.Width(got) != len("plan aborted by ChopTree") {
		t.Fatalf("unexpected styled event %q", got)
	}
}

func TestRenderer_Changes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r, _ := newRenderer(&buf, colorNever)

	start := goap.WorldState{"hasMoney": true, "weather": "sun"}
	r.changes(start, start.Copy())
	r.changes(start, goap.WorldState{"hasMoney": false, "weather": "sun", "hasAxe": true})

	want := "changed: none\nchanged: hasAxe, hasMoney\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}
