package catalog

import (
	"testing"

	"studio-storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_GetByID(t *testing.T) {
	c := Default()

	svc, ok := c.GetByID("tournament-poster")
	require.True(t, ok)
	assert.Equal(t, "Tournament Poster", svc.Name)
	assert.Equal(t, int64(9000), svc.Price)
	assert.Equal(t, "Poster Design", svc.Category)

	_, ok = c.GetByID("does-not-exist")
	assert.False(t, ok)
}

func TestDefault_ListAllKeepsDeclarationOrder(t *testing.T) {
	groups := Default().ListAll()

	require.Len(t, groups, 8)
	assert.Equal(t, "Poster Design", groups[0].Name)
	assert.Equal(t, "Package Deals", groups[7].Name)
	assert.Equal(t, "tournament-poster", groups[0].Services[0].ID)

	total := 0
	for _, g := range groups {
		for _, svc := range g.Services {
			assert.Equal(t, g.Name, svc.Category)
			assert.True(t, Validate(svc), svc.ID)
		}
		total += len(g.Services)
	}
	assert.Equal(t, 39, total)
}

func TestListAll_ReturnsCopy(t *testing.T) {
	c := Default()
	groups := c.ListAll()
	groups[0].Services[0].Price = 1

	svc, _ := c.GetByID(groups[0].Services[0].ID)
	assert.Equal(t, int64(9000), svc.Price)
}

func TestValidate(t *testing.T) {
	valid := model.ServiceOffering{ID: "a", Name: "A", Price: 100, Description: "d", Category: "c"}
	assert.True(t, Validate(valid))

	tests := map[string]func(s *model.ServiceOffering){
		"empty id":          func(s *model.ServiceOffering) { s.ID = "" },
		"empty name":        func(s *model.ServiceOffering) { s.Name = "" },
		"empty description": func(s *model.ServiceOffering) { s.Description = "" },
		"empty category":    func(s *model.ServiceOffering) { s.Category = "" },
		"zero price":        func(s *model.ServiceOffering) { s.Price = 0 },
		"negative price":    func(s *model.ServiceOffering) { s.Price = -5 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := valid
			mutate(&s)
			assert.False(t, Validate(s))
		})
	}
}

func TestNew_RejectsDuplicatesAndInvalid(t *testing.T) {
	_, err := New([]Category{{
		Name: "X",
		Services: []model.ServiceOffering{
			offering("a", "A", 100, "d"),
			offering("a", "A again", 200, "d"),
		},
	}})
	assert.ErrorContains(t, err, "duplicate service id")

	_, err = New([]Category{{
		Name:     "X",
		Services: []model.ServiceOffering{offering("a", "A", 0, "d")},
	}})
	assert.ErrorContains(t, err, "invalid service offering")
}
