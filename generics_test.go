package nasc

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRecord struct{ id int }

type Repository[T any] struct {
	items []T
}

func newUserRepository() *Repository[userRecord] {
	return &Repository[userRecord]{}
}

type widgetRecord struct{ id int }

func newWidgetRepository() *Repository[widgetRecord] {
	return &Repository[widgetRecord]{items: []widgetRecord{{id: 1}}}
}

func TestExportGenericResolvesRegisteredInstantiation(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.ExportGeneric((*Repository[userRecord])(nil), []interface{}{(*userRecord)(nil)}, newUserRepository))
		require.NoError(t, r.ExportGeneric((*Repository[widgetRecord])(nil), []interface{}{(*widgetRecord)(nil)}, newWidgetRepository))
	})

	result, err := root.Locate((*Repository[widgetRecord])(nil))
	require.NoError(t, err)
	repo := result.(*Repository[widgetRecord])
	require.Len(t, repo.items, 1)
	assert.Equal(t, 1, repo.items[0].id)
}

func TestExportGenericInstantiationsAreIndependent(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.ExportGeneric((*Repository[userRecord])(nil), []interface{}{(*userRecord)(nil)}, newUserRepository))
	})

	_, err := root.Locate((*Repository[widgetRecord])(nil))
	require.Error(t, err)
	var diag *GenericInstantiationNotFoundError
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, reflect.TypeOf(Repository[widgetRecord]{}).String(), diag.Requested)
	assert.Contains(t, diag.Known, reflect.TypeOf(Repository[userRecord]{}).String())
}

func TestWithGenericConstraintAcceptsValidArgs(t *testing.T) {
	root := newTestRoot()
	var regErr error
	root.Configure(func(r *Registrar) {
		regErr = r.ExportGeneric((*Repository[userRecord])(nil), []interface{}{(*userRecord)(nil)}, newUserRepository,
			WithGenericConstraint(func(argTypes []reflect.Type) error {
				if len(argTypes) != 1 {
					return assert.AnError
				}
				return nil
			}))
	})
	require.NoError(t, regErr)

	_, err := root.Locate((*Repository[userRecord])(nil))
	require.NoError(t, err)
}

func TestExportGenericChildScopeAddsSiblingInstantiation(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.ExportGeneric((*Repository[userRecord])(nil), []interface{}{(*userRecord)(nil)}, newUserRepository))
	})

	child := root.CreateChildScope()
	child.Configure(func(r *Registrar) {
		require.NoError(t, r.ExportGeneric((*Repository[widgetRecord])(nil), []interface{}{(*widgetRecord)(nil)}, newWidgetRepository))
	})

	_, err := child.Locate((*Repository[userRecord])(nil))
	require.NoError(t, err, "child scope must still see the parent's instantiation")

	_, err = child.Locate((*Repository[widgetRecord])(nil))
	require.NoError(t, err)

	_, err = root.Locate((*Repository[widgetRecord])(nil))
	require.Error(t, err, "root must not see a child-scope-only instantiation")
}
