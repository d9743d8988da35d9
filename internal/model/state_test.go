package model

import (
	"fmt"
	"sync"
	"testing"
)

// TestCrawlStateBestPages tests the strictly-greater replacement rule.
func TestCrawlStateBestPages(t *testing.T) {
	t.Parallel()

	t.Run("starts empty", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		if got := s.BestLinkPage(); got != (PageStat{}) {
			t.Errorf("expected empty best link page, got %+v", got)
		}
		if got := s.BestWordPage(); got != (PageStat{}) {
			t.Errorf("expected empty best word page, got %+v", got)
		}
	})

	t.Run("ties keep the first page", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		if !s.RecordLinks("http://a/1", 3) {
			t.Error("expected first page to become best")
		}
		if s.RecordLinks("http://a/2", 3) {
			t.Error("expected tie not to replace best page")
		}
		if got := s.BestLinkPage(); got.URL != "http://a/1" || got.Count != 3 {
			t.Errorf("expected http://a/1 with 3, got %+v", got)
		}
		s.RecordLinks("http://a/3", 4)
		if got := s.BestLinkPage(); got.URL != "http://a/3" || got.Count != 4 {
			t.Errorf("expected http://a/3 with 4, got %+v", got)
		}
	})

	t.Run("zero links never replace the empty page", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		s.RecordLinks("http://a/1", 0)
		if got := s.BestLinkPage(); got.URL != "" {
			t.Errorf("expected empty URL, got %q", got.URL)
		}
	})

	t.Run("word counts and best word page", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		s.RecordWords("http://a/1", []string{"the", "quick", "quick", "fox"})
		s.RecordWords("http://a/2", []string{"fox"})

		if got := s.WordCount("quick"); got != 2 {
			t.Errorf("expected quick=2, got %d", got)
		}
		if got := s.WordCount("fox"); got != 2 {
			t.Errorf("expected fox=2, got %d", got)
		}
		if got := s.BestWordPage(); got.URL != "http://a/1" || got.Count != 4 {
			t.Errorf("expected http://a/1 with 4, got %+v", got)
		}
	})
}

// TestCrawlStateClassification tests trap/accept exclusivity and counters.
func TestCrawlStateClassification(t *testing.T) {
	t.Parallel()

	t.Run("accept stores once but counts every call", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		if !s.Accept("http://sub.ics.uci.edu/a", "sub") {
			t.Error("expected first accept to add URL")
		}
		if s.Accept("http://sub.ics.uci.edu/a", "sub") {
			t.Error("expected second accept not to add URL again")
		}
		if got := s.SubdomainCount("sub"); got != 2 {
			t.Errorf("expected sub=2, got %d", got)
		}
		if got := s.Counts().Accepted; got != 1 {
			t.Errorf("expected 1 accepted URL, got %d", got)
		}
	})

	t.Run("empty subdomain is not counted", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		s.Accept("http://uci.edu/a", "")
		if got := s.Counts().Subdomains; got != 0 {
			t.Errorf("expected no subdomains, got %d", got)
		}
	})

	t.Run("accepted URL is never recorded as trap", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		s.Accept("http://a.ics.uci.edu/x", "a")
		if s.AddTrap("http://a.ics.uci.edu/x") {
			t.Error("expected AddTrap to refuse an accepted URL")
		}
		if s.IsTrap("http://a.ics.uci.edu/x") {
			t.Error("expected URL not to be a trap")
		}
	})

	t.Run("trap URL is never accepted", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		if !s.AddTrap("http://a.ics.uci.edu/x") {
			t.Error("expected AddTrap to add URL")
		}
		if s.AddTrap("http://a.ics.uci.edu/x") {
			t.Error("expected duplicate trap to be ignored")
		}
		s.Accept("http://a.ics.uci.edu/x", "a")
		if s.IsAccepted("http://a.ics.uci.edu/x") {
			t.Error("expected trap URL not to be accepted")
		}
	})

	t.Run("family counter increments", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlState()
		for i := 1; i <= 3; i++ {
			if got := s.ObserveFamily("http://a/cal"); got != i {
				t.Errorf("expected %d, got %d", i, got)
			}
		}
		if got := s.FamilyCount("http://a/cal"); got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
		if got := s.FamilyCount("http://a/other"); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})
}

// TestCrawlStateSnapshot tests ordering and round-tripping through Restore.
func TestCrawlStateSnapshot(t *testing.T) {
	t.Parallel()

	s := NewCrawlState()
	s.RecordWords("http://a/1", []string{"zeta", "alpha", "zeta"})
	s.RecordLinks("http://a/1", 5)
	s.Accept("http://b.ics.uci.edu/", "b")
	s.Accept("http://a.ics.uci.edu/", "a")
	s.AddTrap("http://a.ics.uci.edu/cal?d=1")
	s.ObserveFamily("http://a.ics.uci.edu/cal")

	snap := s.Snapshot()

	t.Run("words are in first-seen order", func(t *testing.T) {
		t.Parallel()
		if len(snap.Words) != 2 || snap.Words[0].Key != "zeta" || snap.Words[1].Key != "alpha" {
			t.Errorf("unexpected word order: %+v", snap.Words)
		}
		if snap.Words[0].Count != 2 {
			t.Errorf("expected zeta=2, got %d", snap.Words[0].Count)
		}
	})

	t.Run("subdomains are in first-seen order", func(t *testing.T) {
		t.Parallel()
		if len(snap.Subdomains) != 2 || snap.Subdomains[0].Key != "b" {
			t.Errorf("unexpected subdomain order: %+v", snap.Subdomains)
		}
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		t.Parallel()
		fresh := s.Snapshot()
		fresh.Words[0].Count = 100
		if s.WordCount("zeta") != 2 {
			t.Error("expected state not to change when a snapshot is modified")
		}
	})

	t.Run("restore reproduces the state", func(t *testing.T) {
		t.Parallel()
		restored := NewCrawlStateFromSnapshot(snap)
		if got := restored.WordCount("zeta"); got != 2 {
			t.Errorf("expected zeta=2, got %d", got)
		}
		if got := restored.BestLinkPage(); got.Count != 5 {
			t.Errorf("expected best link count 5, got %d", got.Count)
		}
		if !restored.IsTrap("http://a.ics.uci.edu/cal?d=1") {
			t.Error("expected trap to be restored")
		}
		if !restored.IsAccepted("http://a.ics.uci.edu/") {
			t.Error("expected accepted URL to be restored")
		}
		if got := restored.FamilyCount("http://a.ics.uci.edu/cal"); got != 1 {
			t.Errorf("expected family count 1, got %d", got)
		}
		if got := restored.Snapshot().Subdomains[0].Key; got != "b" {
			t.Errorf("expected restored subdomain order to start with b, got %q", got)
		}
	})

	t.Run("restore nil resets", func(t *testing.T) {
		t.Parallel()
		other := NewCrawlStateFromSnapshot(snap)
		other.Restore(nil)
		if c := other.Counts(); c != (Counts{}) {
			t.Errorf("expected empty counts, got %+v", c)
		}
	})
}

// TestCrawlStateConcurrent checks that concurrent updates are not lost.
func TestCrawlStateConcurrent(t *testing.T) {
	t.Parallel()

	s := NewCrawlState()
	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.ObserveFamily("http://a/cal")
				s.RecordWords(fmt.Sprintf("http://a/%d/%d", w, i), []string{"word"})
				s.RecordLinks(fmt.Sprintf("http://a/%d/%d", w, i), w*perWorker+i)
				s.Accept(fmt.Sprintf("http://s.a.b/%d", i), "s")
			}
		}(w)
	}
	wg.Wait()

	if got := s.FamilyCount("http://a/cal"); got != workers*perWorker {
		t.Errorf("expected %d, got %d", workers*perWorker, got)
	}
	if got := s.WordCount("word"); got != workers*perWorker {
		t.Errorf("expected %d, got %d", workers*perWorker, got)
	}
	if got := s.SubdomainCount("s"); got != workers*perWorker {
		t.Errorf("expected %d, got %d", workers*perWorker, got)
	}
	if got := s.Counts().Accepted; got != perWorker {
		t.Errorf("expected %d accepted, got %d", perWorker, got)
	}

	best := s.BestLinkPage()
	if best.Count != workers*perWorker-1 {
		t.Errorf("expected best count %d, got %d", workers*perWorker-1, best.Count)
	}
	if best.URL != fmt.Sprintf("http://a/%d/%d", workers-1, perWorker-1) {
		t.Errorf("best page URL does not match its count: %+v", best)
	}
}
