// Package mocks provides testify/mock implementations of the store
// interfaces, shared by service and API tests.
//
//	users := new(mocks.UserStore)
//	users.On("GetByID", mock.Anything, id).Return(user, nil)
package mocks
