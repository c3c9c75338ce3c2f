package onboarding

// Field is an optional patch value. The zero Field is absent and leaves the
// draft untouched; Set stores a value; Clear stores nil.
type Field struct {
	present bool
	value   *string
}

func Set(v string) Field {
	return Field{present: true, value: &v}
}

// Clear marks a field as present but empty, which erases the draft value.
func Clear() Field {
	return Field{present: true}
}

func (f Field) Present() bool { return f.present }

// Value is nil for absent and cleared fields.
func (f Field) Value() *string { return f.value }

// Draft accumulates sign-up input across wizard steps. Nil means not yet
// provided.
type Draft struct {
	School    *string
	Email     *string
	Username  *string
	FullName  *string
	AvatarURL *string
	Password  *string
}

// Patch is a partial update of a Draft.
type Patch struct {
	School    Field
	Email     Field
	Username  Field
	FullName  Field
	AvatarURL Field
	Password  Field
}

// Merge returns d with every present field of p applied. Neither argument
// is modified.
func Merge(d Draft, p Patch) Draft {
	out := Draft{
		School:    apply(d.School, p.School),
		Email:     apply(d.Email, p.Email),
		Username:  apply(d.Username, p.Username),
		FullName:  apply(d.FullName, p.FullName),
		AvatarURL: apply(d.AvatarURL, p.AvatarURL),
		Password:  apply(d.Password, p.Password),
	}
	return out
}

func apply(cur *string, f Field) *string {
	if !f.present {
		return clone(cur)
	}
	return clone(f.value)
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func (d Draft) clone() Draft {
	return Merge(d, Patch{})
}

// Get returns the field value or "" when absent.
func Get(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
