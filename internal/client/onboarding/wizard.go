// Package onboarding holds the sign-up wizard state: the current step and
// the draft the steps fill in.
package onboarding

import "sync"

// FirstStep is where every wizard run starts.
const FirstStep = 1

// Wizard is safe for concurrent use. Steps are not bounds checked; the
// presentation layer decides what each number means.
type Wizard struct {
	mu    sync.Mutex
	step  int
	draft Draft
}

func NewWizard() *Wizard {
	return &Wizard{step: FirstStep}
}

// Mount resets the step to the first one. The draft survives so that a
// user coming back to the entry screen does not retype everything.
func (w *Wizard) Mount() {
	w.mu.Lock()
	w.step = FirstStep
	w.mu.Unlock()
}

func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) SetCurrentStep(step int) {
	w.mu.Lock()
	w.step = step
	w.mu.Unlock()
}

// UpdateSignUpData merges p into the draft.
func (w *Wizard) UpdateSignUpData(p Patch) {
	w.mu.Lock()
	w.draft = Merge(w.draft, p)
	w.mu.Unlock()
}

// SignUpData returns a copy of the draft.
func (w *Wizard) SignUpData() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

// Discard drops the draft and rewinds to the first step.
func (w *Wizard) Discard() {
	w.mu.Lock()
	w.draft = Draft{}
	w.step = FirstStep
	w.mu.Unlock()
}
