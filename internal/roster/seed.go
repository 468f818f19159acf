package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cura-agent/roster-service/internal/domain"
)

// Seeds maps each category to its starting collection.
type Seeds map[domain.Category][]domain.RosterEntry

type seedFile struct {
	Doctors       []domain.RosterEntry `yaml:"doctors"`
	Nurses        []domain.RosterEntry `yaml:"nurses"`
	Receptionists []domain.RosterEntry `yaml:"receptionists"`
}

// LoadSeedFile reads a YAML seed file with doctors, nurses and receptionists lists.
func LoadSeedFile(path string) (Seeds, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeeds(raw)
}

// ParseSeeds decodes YAML seed content.
func ParseSeeds(raw []byte) (Seeds, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return Seeds{
		domain.CategoryDoctor:       f.Doctors,
		domain.CategoryNurse:        f.Nurses,
		domain.CategoryReceptionist: f.Receptionists,
	}, nil
}

// Validate checks that ids are present and unique per category and roles are known.
func (s Seeds) Validate() []error {
	var problems []error
	for _, c := range domain.Categories {
		seen := map[string]struct{}{}
		for i, e := range s[c] {
			if e.ID == "" {
				problems = append(problems, fmt.Errorf("%s[%d]: missing id", c, i))
			} else if _, dup := seen[e.ID]; dup {
				problems = append(problems, fmt.Errorf("%s[%d]: duplicate id %q", c, i, e.ID))
			}
			seen[e.ID] = struct{}{}
			if !e.Role.Valid() {
				problems = append(problems, fmt.Errorf("%s[%d]: unknown role %q", c, i, e.Role))
			}
		}
	}
	return problems
}

func specialty(s string) *string { return &s }

// DefaultSeeds returns the mock staff the admin panel ships with.
func DefaultSeeds() Seeds {
	return Seeds{
		domain.CategoryDoctor: {
			{ID: "doc-1", FirstName: "Ahmed", LastName: "Hassan", NationalID: "29001011234567", Email: "ahmed.hassan@cura.health", Mobile: "+201001234567", Role: domain.RoleDoctor, Specialty: specialty("Cardiology")},
			{ID: "doc-2", FirstName: "Mona", LastName: "Khaled", NationalID: "28805151234567", Email: "mona.khaled@cura.health", Mobile: "+201112345678", Role: domain.RoleDoctor, Specialty: specialty("Pediatrics")},
			{ID: "doc-3", FirstName: "Omar", LastName: "Farouk", NationalID: "29203031234567", Email: "omar.farouk@cura.health", Mobile: "+201223456789", Role: domain.RoleDoctor, Specialty: specialty("Neurology")},
		},
		domain.CategoryNurse: {
			{ID: "nur-1", FirstName: "Salma", LastName: "Adel", NationalID: "29507071234567", Email: "salma.adel@cura.health", Mobile: "+201004567890", Role: domain.RoleNurse},
			{ID: "nur-2", FirstName: "Yara", LastName: "Mostafa", NationalID: "29609091234567", Email: "yara.mostafa@cura.health", Mobile: "+201015678901", Role: domain.RoleNurse},
			{ID: "nur-3", FirstName: "Karim", LastName: "Nabil", NationalID: "29411111234567", Email: "karim.nabil@cura.health", Mobile: "+201026789012", Role: domain.RoleNurse},
		},
		domain.CategoryReceptionist: {
			{ID: "rec-1", FirstName: "Hana", LastName: "Samir", NationalID: "29812121234567", Email: "hana.samir@cura.health", Mobile: "+201037890123", Role: domain.RoleReceptionist},
			{ID: "rec-2", FirstName: "Tarek", LastName: "Fathy", NationalID: "29702021234567", Email: "tarek.fathy@cura.health", Mobile: "+201048901234", Role: domain.RoleReceptionist},
			{ID: "rec-3", FirstName: "Laila", LastName: "Youssef", NationalID: "29904041234567", Email: "laila.youssef@cura.health", Mobile: "+201059012345", Role: domain.RoleReceptionist},
		},
	}
}
