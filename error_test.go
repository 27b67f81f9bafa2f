// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func (suite *ErrorTestSuite) TestInitializationError() {
	cause := errors.New("expected")
	ie := &InitializationError{Err: cause}

	suite.Contains(ie.Error(), "expected")
	suite.ErrorIs(ie, cause)
}

func (suite *ErrorTestSuite) TestOperationError() {
	cause := errors.New("expected")
	oe := &OperationError{Op: "cancel", Err: cause}

	suite.Contains(oe.Error(), "cancel")
	suite.Contains(oe.Error(), "expected")
	suite.ErrorIs(oe, cause)
}

func TestError(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}
