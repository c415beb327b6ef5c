package billing

// ClientRef points at a registered client.
type ClientRef struct {
	ID        string `json:"id"`
	LegalName string `json:"legal_name"`
	TaxID     string `json:"tax_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Prospect is a free-text recipient used by quotes before a client exists.
type Prospect struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Party is the recipient of a document. Exactly one variant must be set:
// a registered client, or (for quotes only) a prospect.
type Party struct {
	Client   *ClientRef `json:"client,omitempty"`
	Prospect *Prospect  `json:"prospect,omitempty"`
}

// NewClientParty builds a party from a registered client.
func NewClientParty(ref ClientRef) (Party, error) {
	if ref.ID == "" || ref.LegalName == "" {
		return Party{}, ErrMissingParty
	}
	return Party{Client: &ref}, nil
}

// NewProspectParty builds a party from a free-text prospect.
func NewProspectParty(p Prospect) (Party, error) {
	if p.Name == "" {
		return Party{}, ErrMissingParty
	}
	return Party{Prospect: &p}, nil
}

// Validate enforces the exactly-one-variant invariant.
func (p Party) Validate() error {
	if p.Client != nil && p.Prospect != nil {
		return ErrAmbiguousParty
	}
	if p.Client != nil {
		if p.Client.ID == "" || p.Client.LegalName == "" {
			return ErrMissingParty
		}
		return nil
	}
	if p.Prospect != nil {
		if p.Prospect.Name == "" {
			return ErrMissingParty
		}
		return nil
	}
	return ErrMissingParty
}

// IsProspect reports whether the party is a free-text prospect.
func (p Party) IsProspect() bool { return p.Prospect != nil && p.Client == nil }

// DisplayName resolves the name shown on documents and rankings.
// Empty when no variant is set; the layout engine renders a placeholder.
func (p Party) DisplayName() string {
	if p.Client != nil {
		return p.Client.LegalName
	}
	if p.Prospect != nil {
		return p.Prospect.Name
	}
	return ""
}

// GroupKey identifies the party for revenue rankings. Registered clients
// group by id, prospects by their free-text name.
func (p Party) GroupKey() string {
	if p.Client != nil {
		return "client:" + p.Client.ID
	}
	if p.Prospect != nil {
		return "prospect:" + p.Prospect.Name
	}
	return ""
}

// Email returns the contact email, empty when unknown.
func (p Party) Email() string {
	if p.Client != nil {
		return p.Client.Email
	}
	if p.Prospect != nil {
		return p.Prospect.Email
	}
	return ""
}

// TaxID returns the registered tax id, empty for prospects.
func (p Party) TaxID() string {
	if p.Client != nil {
		return p.Client.TaxID
	}
	return ""
}
