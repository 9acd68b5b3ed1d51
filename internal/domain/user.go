package domain

type User struct {
	ID        string `json:"id,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
	GroupKey  string `json:"groupKey,omitempty"`
}

// Merge returns u with every non-empty field of patch laid over it.
func (u User) Merge(patch User) User {
	merged := u
	if patch.ID != "" {
		merged.ID = patch.ID
	}
	if patch.Firstname != "" {
		merged.Firstname = patch.Firstname
	}
	if patch.Lastname != "" {
		merged.Lastname = patch.Lastname
	}
	if patch.Username != "" {
		merged.Username = patch.Username
	}
	if patch.Email != "" {
		merged.Email = patch.Email
	}
	if patch.Password != "" {
		merged.Password = patch.Password
	}
	if patch.GroupKey != "" {
		merged.GroupKey = patch.GroupKey
	}
	return merged
}
