package main

import "testing"

func TestApplyPresetReplacesTrackSettings(t *testing.T) {
	project := starterProject()
	if err := applyPreset(&project, "kick=Deep Kick"); err != nil {
		t.Fatalf("applyPreset: %v", err)
	}
	track := project.TrackByID("kick")
	if got := track.Settings["tune"]; got != 38 {
		t.Errorf("tune = %v, want 38", got)
	}
}

func TestApplyPresetRejectsKindMismatch(t *testing.T) {
	project := starterProject()
	if err := applyPreset(&project, "bass=Deep Kick"); err == nil {
		t.Errorf("kick preset applied to a bass track")
	}
}

func TestApplyPresetRejectsBadInput(t *testing.T) {
	project := starterProject()
	if err := applyPreset(&project, "kick"); err == nil {
		t.Errorf("spec without a preset name accepted")
	}
	if err := applyPreset(&project, "ghost=Deep Kick"); err == nil {
		t.Errorf("unknown track accepted")
	}
	if err := applyPreset(&project, "kick=No Such Preset"); err == nil {
		t.Errorf("unknown preset accepted")
	}
}

func TestSavePresetRejectsBadInput(t *testing.T) {
	project := starterProject()
	if err := savePreset(&project, "kick"); err == nil {
		t.Errorf("spec without a preset name accepted")
	}
	if err := savePreset(&project, "ghost=My Kick"); err == nil {
		t.Errorf("unknown track accepted")
	}
}
