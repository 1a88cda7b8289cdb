package dawduction

// The yaml packages do not honor encoding.TextMarshaler, so every enum also
// carries the yaml marshaling pair. The unmarshal-callback form is accepted
// by both yaml.v2 and yaml.v3.

func (k InstrumentKind) MarshalYAML() (interface{}, error) {
	text, err := k.MarshalText()
	return string(text), err
}

func (k *InstrumentKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

func (k EffectKind) MarshalYAML() (interface{}, error) {
	text, err := k.MarshalText()
	return string(text), err
}

func (k *EffectKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

func (t EnvelopeTarget) MarshalYAML() (interface{}, error) {
	text, err := t.MarshalText()
	return string(text), err
}

func (t *EnvelopeTarget) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

func (s CurveShape) MarshalYAML() (interface{}, error) {
	text, err := s.MarshalText()
	return string(text), err
}

func (s *CurveShape) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

func (k TimelineTrackKind) MarshalYAML() (interface{}, error) {
	text, err := k.MarshalText()
	return string(text), err
}

func (k *TimelineTrackKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

func (m ViewMode) MarshalYAML() (interface{}, error) {
	text, err := m.MarshalText()
	return string(text), err
}

func (m *ViewMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return m.UnmarshalText([]byte(s))
}

func (t AutomationTargetType) MarshalYAML() (interface{}, error) {
	text, err := t.MarshalText()
	return string(text), err
}

func (t *AutomationTargetType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}
