// Package graph is the query-oriented adapter over the member service. It
// holds no business rules: every resolver is one service call.
package graph

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"members/internal/members/models"
	dErrors "members/pkg/domain-errors"
)

// Service is the member operation set the resolvers call.
type Service interface {
	List(ctx context.Context) ([]*models.Member, error)
	Get(ctx context.Context, id models.MemberID) (*models.Member, error)
	FilterByRole(ctx context.Context, role models.Role) ([]*models.Member, error)
	Create(ctx context.Context, draft models.Draft) (*models.Member, error)
	Update(ctx context.Context, id models.MemberID, draft models.Draft) (*models.Member, error)
	Delete(ctx context.Context, id models.MemberID) (*models.Member, error)
}

// Error carries the domain error code to the client in the GraphQL error
// extensions. Internal failures keep a generic message.
type Error struct {
	Message string
	Code    dErrors.Code
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions is read by graphql-go when formatting resolver errors.
func (e *Error) Extensions() map[string]any {
	return map[string]any{"code": string(e.Code)}
}

func toGraphError(err error) error {
	code := dErrors.CodeOf(err)
	msg := err.Error()
	if code == dErrors.CodeInternal {
		msg = "internal error"
	}
	return &Error{Message: msg, Code: code}
}

func enumOf[T ~string](name string, values []T) *graphql.Enum {
	cfg := graphql.EnumValueConfigMap{}
	for _, v := range values {
		cfg[string(v)] = &graphql.EnumValueConfig{Value: string(v)}
	}
	return graphql.NewEnum(graphql.EnumConfig{Name: name, Values: cfg})
}

type resolvers struct {
	service Service
}

// NewSchema builds the member schema bound to service.
func NewSchema(service Service) (graphql.Schema, error) {
	res := &resolvers{service: service}

	roleEnum := enumOf("Role", models.Roles)
	sectionEnum := enumOf("Section", models.Sections)

	memberType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Member",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"section":     &graphql.Field{Type: graphql.NewNonNull(sectionEnum)},
			"phoneNumber": &graphql.Field{Type: graphql.String},
			"email":       &graphql.Field{Type: graphql.String},
			"roles":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(roleEnum)))},
		},
	})

	memberInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "MemberInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"section":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(sectionEnum)},
			"phoneNumber": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"email":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"roles":       &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(roleEnum))},
		},
	})

	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	memberList := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(memberType)))

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"all": &graphql.Field{
				Type:    memberList,
				Resolve: res.all,
			},
			"member": &graphql.Field{
				Type:    memberType,
				Args:    graphql.FieldConfigArgument{"id": idArg},
				Resolve: res.member,
			},
			"byRole": &graphql.Field{
				Type:    memberList,
				Args:    graphql.FieldConfigArgument{"role": &graphql.ArgumentConfig{Type: graphql.NewNonNull(roleEnum)}},
				Resolve: res.byRole,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addMember": &graphql.Field{
				Type:    graphql.NewNonNull(memberType),
				Args:    graphql.FieldConfigArgument{"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(memberInput)}},
				Resolve: res.addMember,
			},
			"editMember": &graphql.Field{
				Type: graphql.NewNonNull(memberType),
				Args: graphql.FieldConfigArgument{
					"id":    idArg,
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(memberInput)},
				},
				Resolve: res.editMember,
			},
			"deleteMember": &graphql.Field{
				Type:    graphql.NewNonNull(memberType),
				Args:    graphql.FieldConfigArgument{"id": idArg},
				Resolve: res.deleteMember,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build member schema: %w", err)
	}
	return schema, nil
}
