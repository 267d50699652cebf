package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMissingDeviceIDExitsWithMissingArgument(t *testing.T) {
	assert.Equal(t, exitMissingArgument, run([]string{}))
}

func TestRunInvalidDeviceIDExitsWithInvalidDeviceID(t *testing.T) {
	assert.Equal(t, exitInvalidDeviceID, run([]string{"-d", "99"}))
	assert.Equal(t, exitInvalidDeviceID, run([]string{"-d", "garbage"}))
}

func TestRunUnknownDeviceExitsWithUnknownDevice(t *testing.T) {
	assert.Equal(t, exitUnknownDevice, run([]string{"-d", "3"}))
}

func TestRunInstalledCardStatusSucceeds(t *testing.T) {
	assert.Equal(t, exitOK, run([]string{"-d", "0"}))
	assert.Equal(t, exitOK, run([]string{"-d", "1", "--temp"}))
}

func TestRunPowerStateUnrecognizedExitsWithUnrecognizedPowerState(t *testing.T) {
	assert.Equal(t, exitUnrecognizedPowerState, run([]string{"-M", "power", "-d", "dcdc", "-p", "maybe"}))
}

func TestRunPowerStateRecognizedSucceeds(t *testing.T) {
	assert.Equal(t, exitOK, run([]string{"-M", "power", "-d", "bank1", "-p", "on"}))
	assert.Equal(t, exitOK, run([]string{"-M", "power", "-d", "5", "-p", "power_off"}))
}

func TestRunPowerDeviceWithoutStateJustReportsCurrentState(t *testing.T) {
	assert.Equal(t, exitOK, run([]string{"-M", "power", "-d", "aux"}))
}

func TestRunPowerUnknownDeviceExitsWithUnknownDevice(t *testing.T) {
	assert.Equal(t, exitUnknownDevice, run([]string{"-M", "power", "-d", "not-a-device"}))
}

func TestRunSwitchNotDetectedWhenTimeoutForced(t *testing.T) {
	assert.Equal(t, exitSwitchNotDetected, run([]string{"-M", "switch", "-d", "def_sw", "--switch-timeout", "0s"}))
}

func TestRunSwitchDetectedByDefault(t *testing.T) {
	assert.Equal(t, exitOK, run([]string{"-M", "switch", "-d", "wifi_sw"}))
}

func TestRunUnrecognizedModeExitsWithUsage(t *testing.T) {
	assert.Equal(t, exitUsage, run([]string{"-M", "bogus", "-d", "0"}))
}
