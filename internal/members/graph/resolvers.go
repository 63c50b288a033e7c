package graph

import (
	"github.com/graphql-go/graphql"

	"members/internal/members/models"
	dErrors "members/pkg/domain-errors"
)

func (r *resolvers) all(p graphql.ResolveParams) (any, error) {
	list, err := r.service.List(p.Context)
	if err != nil {
		return nil, toGraphError(err)
	}
	return toMaps(list), nil
}

func (r *resolvers) member(p graphql.ResolveParams) (any, error) {
	m, err := r.service.Get(p.Context, idArg(p))
	if err != nil {
		return nil, toGraphError(err)
	}
	return toMap(m), nil
}

func (r *resolvers) byRole(p graphql.ResolveParams) (any, error) {
	role, _ := p.Args["role"].(string)
	list, err := r.service.FilterByRole(p.Context, models.Role(role))
	if err != nil {
		return nil, toGraphError(err)
	}
	return toMaps(list), nil
}

func (r *resolvers) addMember(p graphql.ResolveParams) (any, error) {
	draft, err := draftArg(p)
	if err != nil {
		return nil, toGraphError(err)
	}
	m, err := r.service.Create(p.Context, draft)
	if err != nil {
		return nil, toGraphError(err)
	}
	return toMap(m), nil
}

func (r *resolvers) editMember(p graphql.ResolveParams) (any, error) {
	draft, err := draftArg(p)
	if err != nil {
		return nil, toGraphError(err)
	}
	m, err := r.service.Update(p.Context, idArg(p), draft)
	if err != nil {
		return nil, toGraphError(err)
	}
	return toMap(m), nil
}

func (r *resolvers) deleteMember(p graphql.ResolveParams) (any, error) {
	m, err := r.service.Delete(p.Context, idArg(p))
	if err != nil {
		return nil, toGraphError(err)
	}
	return toMap(m), nil
}

func idArg(p graphql.ResolveParams) models.MemberID {
	id, _ := p.Args["id"].(int)
	return models.MemberID(id)
}

// draftArg maps the MemberInput argument. Enum values were already checked by
// the executor; the service validates the rest.
func draftArg(p graphql.ResolveParams) (models.Draft, error) {
	in, ok := p.Args["input"].(map[string]any)
	if !ok {
		return models.Draft{}, dErrors.New(dErrors.CodeBadRequest, "input is required")
	}
	d := models.Draft{}
	d.Name, _ = in["name"].(string)
	section, _ := in["section"].(string)
	d.Section = models.Section(section)
	d.PhoneNumber = optionalString(in["phoneNumber"])
	d.Email = optionalString(in["email"])

	if raw, ok := in["roles"].([]any); ok {
		roles := make([]models.Role, 0, len(raw))
		for _, v := range raw {
			s, _ := v.(string)
			roles = append(roles, models.Role(s))
		}
		d.Roles = models.NewRoleSet(roles...)
	}
	return d, nil
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func toMap(m *models.Member) map[string]any {
	roles := m.Roles.Strings()
	if roles == nil {
		roles = []string{}
	}
	out := map[string]any{
		"id":          int(m.ID),
		"name":        m.Name,
		"section":     string(m.Section),
		"phoneNumber": nil,
		"email":       nil,
		"roles":       roles,
	}
	if m.PhoneNumber != nil {
		out["phoneNumber"] = *m.PhoneNumber
	}
	if m.Email != nil {
		out["email"] = *m.Email
	}
	return out
}

func toMaps(list []*models.Member) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, m := range list {
		out = append(out, toMap(m))
	}
	return out
}
