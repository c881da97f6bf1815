package frame

import "testing"

func TestParseFramesSkipsFramesWithoutID(t *testing.T) {
	doc := Document{FileName: "a.xml", Xml: `<root><ServiceFrame version="1"><lines/></ServiceFrame><ServiceFrame id="SF1" version="1"><lines/></ServiceFrame></root>`}
	frames := ParseFrames(doc)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame (the one with @id), got %d", len(frames))
	}
	if frames[0].ID != "SF1" {
		t.Errorf("got %q", frames[0].ID)
	}
}

func TestParseFramesExtractsPrerequisites(t *testing.T) {
	doc := Document{FileName: "routes.xml", Xml: `<ServiceFrame id="SF:routes" version="1"><prerequisites><ServiceFrameRef ref="SF:lines" version="2"/></prerequisites></ServiceFrame>`}
	frames := ParseFrames(doc)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if len(frames[0].Prerequisites) != 1 {
		t.Fatalf("expected 1 prerequisite, got %d", len(frames[0].Prerequisites))
	}
	p := frames[0].Prerequisites[0]
	if p.Ref != "SF:lines" || p.Version != "2" {
		t.Errorf("got %+v", p)
	}
}

func TestBuildPrerequisiteGraphLastWriterWins(t *testing.T) {
	docA := Document{FileName: "a.xml", Xml: `<ServiceFrame id="SF1" version="1"><prerequisites><ServiceFrameRef ref="X"/></prerequisites></ServiceFrame>`}
	docB := Document{FileName: "b.xml", Xml: `<ServiceFrame id="SF1" version="1"></ServiceFrame>`}

	frames, graph := BuildPrerequisiteGraph([]Document{docA, docB})
	if len(frames) != 2 {
		t.Fatalf("expected both frame occurrences recorded, got %d", len(frames))
	}
	byID := FramesByID(frames)
	if byID["SF1"].FileName != "b.xml" {
		t.Errorf("expected last-writer-wins to prefer b.xml, got %q", byID["SF1"].FileName)
	}
	if len(graph["SF1"]) != 0 {
		t.Errorf("expected the last-writer's empty prerequisite set to win, got %v", graph["SF1"])
	}
}

func TestBuildPrerequisiteGraphEmptySetForNoPrerequisites(t *testing.T) {
	doc := Document{FileName: "a.xml", Xml: `<ServiceFrame id="SF1" version="1"></ServiceFrame>`}
	_, graph := BuildPrerequisiteGraph([]Document{doc})
	set, ok := graph["SF1"]
	if !ok {
		t.Fatal("expected SF1 present in graph")
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}
