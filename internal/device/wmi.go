package device

// logicalDisk is the subset of Win32_LogicalDisk the Windows strategy reads.
type logicalDisk struct {
	Name       string
	VolumeName string
}

// matchLogicalDisks returns the root path (drive name plus separator) of each
// disk whose volume name equals label.
func matchLogicalDisks(disks []logicalDisk, label string) []string {
	var candidates []string
	for _, disk := range disks {
		if disk.VolumeName != label || disk.Name == "" {
			continue
		}
		candidates = append(candidates, disk.Name+`\`)
	}
	return candidates
}
