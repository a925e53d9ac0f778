package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type stringifiedHolder struct {
	Items JSONString[[]int] `json:"items"`
	Plain []int             `json:"plain"`
}

func TestJSONString_Marshal(t *testing.T) {
	out, err := json.Marshal(stringifiedHolder{Items: Stringified([]int{1, 2}), Plain: []int{3}})
	require.NoError(t, err)
	require.JSONEq(t, `{"items":"[1,2]","plain":[3]}`, string(out))
}

func TestJSONString_UnmarshalAcceptsBothForms(t *testing.T) {
	var h stringifiedHolder
	require.NoError(t, json.Unmarshal([]byte(`{"items":"[4,5]"}`), &h))
	require.Equal(t, []int{4, 5}, h.Items.Value)

	h = stringifiedHolder{}
	require.NoError(t, json.Unmarshal([]byte(`{"items":[6]}`), &h))
	require.Equal(t, []int{6}, h.Items.Value)

	require.Error(t, json.Unmarshal([]byte(`{"items":"not json"}`), &h))
}

func TestFlexString(t *testing.T) {
	var p CompanyProfile
	require.NoError(t, json.Unmarshal([]byte(`{"employee_count":1200,"founded_year":null}`), &p))
	require.Equal(t, FlexString("1200"), p.EmployeeCount)
	require.Equal(t, FlexString(""), p.FoundedYear)
}
